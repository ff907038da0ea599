package config

import "time"

// RugConfig is the top-level configuration structure for rug.
type RugConfig struct {
	Host              string          `yaml:"host,omitempty"`
	LogLevel          string          `yaml:"logLevel,omitempty"`
	NumWorkers        int             `yaml:"numWorkers,omitempty"`
	HealthCheckPeriod time.Duration   `yaml:"healthCheckPeriod,omitempty"`
	Bootstrap         BootstrapConfig `yaml:"bootstrap"`
	Neutron           NeutronConfig   `yaml:"neutron"`
	Kafka             KafkaConfig     `yaml:"kafka"`
	Metrics           MetricsConfig   `yaml:"metrics"`
}

// BootstrapConfig controls the retry schedule of the startup router listing.
type BootstrapConfig struct {
	InitialBackoff time.Duration `yaml:"initialBackoff,omitempty"`
	MaxBackoff     time.Duration `yaml:"maxBackoff,omitempty"`
}

// NeutronConfig holds the Keystone credentials used to reach the network service.
type NeutronConfig struct {
	AuthURL     string `yaml:"authURL,omitempty"`
	Username    string `yaml:"username,omitempty"`
	Password    string `yaml:"password,omitempty"`
	ProjectName string `yaml:"projectName,omitempty"`
	DomainName  string `yaml:"domainName,omitempty"`
	Region      string `yaml:"region,omitempty"`
}

// KafkaConfig describes where notifications are consumed from. With no
// brokers the listener is not started.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers,omitempty"`
	Topic   string   `yaml:"topic,omitempty"`
	Group   string   `yaml:"group,omitempty"`
}

// MetricsConfig configures the /metrics and /healthz endpoint.
type MetricsConfig struct {
	Address string `yaml:"address"`
}
