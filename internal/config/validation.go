package config

import (
	"fmt"
	"strings"

	"rug/pkg/logging"
)

// Validate reports every problem in the configuration at once. The returned
// error is a ConfigurationErrorCollection.
func (c RugConfig) Validate() error {
	var errs ConfigurationErrorCollection

	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs.AddFieldError("logLevel", err.Error(), "use one of debug, info, warn, error")
	}
	if c.NumWorkers < 1 {
		errs.AddFieldError("numWorkers", fmt.Sprintf("must be at least 1, got %d", c.NumWorkers))
	}
	if c.HealthCheckPeriod < 0 {
		errs.AddFieldError("healthCheckPeriod", "must not be negative")
	}
	if c.Bootstrap.InitialBackoff <= 0 {
		errs.AddFieldError("bootstrap.initialBackoff", "must be positive")
	}
	if c.Bootstrap.MaxBackoff < c.Bootstrap.InitialBackoff {
		errs.AddFieldError("bootstrap.maxBackoff",
			fmt.Sprintf("must not be below initialBackoff (%s < %s)", c.Bootstrap.MaxBackoff, c.Bootstrap.InitialBackoff))
	}
	if strings.TrimSpace(c.Neutron.AuthURL) == "" {
		errs.AddFieldError("neutron.authURL", "is required",
			"set neutron.authURL to the Keystone endpoint, e.g. https://keystone:5000/v3")
	}
	if len(c.Kafka.Brokers) > 0 && strings.TrimSpace(c.Kafka.Topic) == "" {
		errs.AddFieldError("kafka.topic", "is required when brokers are configured")
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}
