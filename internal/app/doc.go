// Package app provides application bootstrap and lifecycle management for rug.
//
// # Architecture Overview
//
//  1. Bootstrap (bootstrap.go): logging setup, configuration loading and
//     validation, service construction.
//  2. Configuration (config.go): runtime settings coming from the command
//     line, layered over config.yaml.
//  3. Services (services.go): the queue, scheduler, worker, bootstrapper,
//     notification listener and metrics endpoint.
//  4. Modes (modes.go): the long-running serve loop.
//
// # Serve Loop
//
// Run installs a SIGINT/SIGTERM handler and then:
//
//   - starts the scheduler's worker pool
//   - launches the reconciliation bootstrap in the background; the relay
//     does not wait for it
//   - starts the notification listener when Kafka brokers are configured
//   - starts the metrics and health endpoint when an address is configured
//   - periodically polls every known router
//   - tells systemd it is ready and enters the relay loop
//
// A signal cancels the context: the relay stops the scheduler and returns
// nil, and the remaining goroutines wind down. An error from the relay or
// the listener is returned from Run and ends the process.
//
// # Usage
//
//	cfg := app.NewConfig(debug, numWorkers, configPath)
//	application, err := app.NewApplication(cfg)
//	if err != nil {
//	    return fmt.Errorf("failed to create application: %w", err)
//	}
//	return application.Run(ctx)
package app
