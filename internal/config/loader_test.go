package config

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rug/pkg/logging"
)

func init() {
	logging.Init(logging.LevelError, logging.FormatText, io.Discard)
}

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte(content), 0644))
}

func TestLoadConfig_DefaultOnly(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	def := GetDefaultConfig()
	assert.Equal(t, def, cfg)
	assert.Equal(t, 16, cfg.NumWorkers)
	assert.Equal(t, time.Second, cfg.Bootstrap.InitialBackoff)
	assert.Equal(t, 15*time.Second, cfg.Bootstrap.MaxBackoff)
	assert.Equal(t, ":9090", cfg.Metrics.Address)
}

func TestLoadConfig_OverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
numWorkers: 4
bootstrap:
  maxBackoff: 30s
neutron:
  authURL: https://keystone:5000/v3
  username: rug
kafka:
  brokers: ["kafka-0:9092", "kafka-1:9092"]
metrics:
  address: ""
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.NumWorkers)
	assert.Equal(t, time.Second, cfg.Bootstrap.InitialBackoff, "unset keys keep their default")
	assert.Equal(t, 30*time.Second, cfg.Bootstrap.MaxBackoff)
	assert.Equal(t, "https://keystone:5000/v3", cfg.Neutron.AuthURL)
	assert.Equal(t, DefaultDomainName, cfg.Neutron.DomainName)
	assert.Equal(t, []string{"kafka-0:9092", "kafka-1:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, DefaultKafkaTopic, cfg.Kafka.Topic)
	assert.Empty(t, cfg.Metrics.Address)
}

func TestLoadConfig_Malformed(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "numWorkers: [not, a, number]\n")

	_, err := LoadConfig(dir)
	require.Error(t, err)

	var ce ConfigurationError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "parse", ce.ErrorType)
	assert.Equal(t, configFileName, ce.FileName)
	assert.NotEmpty(t, ce.Suggestions)
	assert.Contains(t, ce.DetailedError(), "Suggestions:")
}

func TestLoadConfig_Unreadable(t *testing.T) {
	dir := t.TempDir()
	// A directory in place of the file is not ErrNotExist.
	require.NoError(t, os.Mkdir(filepath.Join(dir, configFileName), 0755))

	_, err := LoadConfig(dir)
	var ce ConfigurationError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "io", ce.ErrorType)
}
