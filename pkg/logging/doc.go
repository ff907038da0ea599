// Package logging provides the subsystem-scoped structured logger used across
// rug.
//
// It is a thin layer over log/slog. Every entry carries a "subsystem"
// attribute so that output from the relay, the bootstrapper and the scheduler
// can be filtered independently:
//
//	logging.Init(logging.LevelInfo, logging.FormatText, os.Stderr)
//
//	logging.Info("Relay", "Forwarding notifications to the scheduler")
//	logging.Warn("Bootstrap", "Could not fetch routers from neutron: %v", err)
//	logging.Error("App", err, "Relay terminated")
//
// Messages below the configured level are dropped before formatting.
package logging
