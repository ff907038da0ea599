package config

import (
	"os"
	"time"
)

const (
	DefaultLogLevel          = "info"
	DefaultNumWorkers        = 16
	DefaultHealthCheckPeriod = 60 * time.Second
	DefaultInitialBackoff    = 1 * time.Second
	DefaultMaxBackoff        = 15 * time.Second
	DefaultKafkaTopic        = "notifications.info"
	DefaultKafkaGroup        = "rug"
	DefaultMetricsAddress    = ":9090"
	DefaultDomainName        = "Default"
)

// GetDefaultConfig returns the configuration used when no config.yaml exists.
func GetDefaultConfig() RugConfig {
	host, err := os.Hostname()
	if err != nil {
		host = "rug"
	}

	return RugConfig{
		Host:              host,
		LogLevel:          DefaultLogLevel,
		NumWorkers:        DefaultNumWorkers,
		HealthCheckPeriod: DefaultHealthCheckPeriod,
		Bootstrap: BootstrapConfig{
			InitialBackoff: DefaultInitialBackoff,
			MaxBackoff:     DefaultMaxBackoff,
		},
		Neutron: NeutronConfig{
			DomainName: DefaultDomainName,
		},
		Kafka: KafkaConfig{
			Topic: DefaultKafkaTopic,
			Group: DefaultKafkaGroup,
		},
		Metrics: MetricsConfig{
			Address: DefaultMetricsAddress,
		},
	}
}
