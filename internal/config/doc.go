// Package config provides configuration management for rug.
//
// Configuration is read from config.yaml in a single directory. The default
// directory is ~/.config/rug; commands accept --config-path to point
// elsewhere. A missing file is not an error: the defaults are used as-is.
//
// # Configuration Structure
//
//	host: "rug-01"                  # Name used in logs and the Kafka client ID
//	numWorkers: 16                  # Scheduler worker goroutines
//	healthCheckPeriod: 60s          # How often the worker fleet is polled
//	bootstrap:
//	  initialBackoff: 1s            # First delay after a failed router listing
//	  maxBackoff: 15s               # Ceiling for the doubling delay
//	neutron:
//	  authURL: "https://keystone:5000/v3"
//	  username: "rug"
//	  password: "secret"
//	  projectName: "service"
//	  domainName: "Default"
//	  region: "RegionOne"
//	kafka:
//	  brokers: ["kafka:9092"]
//	  topic: "notifications.info"
//	  group: "rug"
//	metrics:
//	  address: ":9090"              # Empty disables /metrics and /healthz
//
// # Usage
//
//	cfg, err := config.LoadConfig(config.GetDefaultConfigPathOrPanic())
//	if err != nil {
//	    return err
//	}
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
package config
