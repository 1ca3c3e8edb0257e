package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DATABASE_DSN", "postgres://localhost/syshair")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "https://api.mercadopago.com", cfg.MercadoPago.BaseURL)
	assert.Equal(t, time.Hour, cfg.Jobs.DispatchInterval)
	assert.Equal(t, 100, cfg.Jobs.BatchSize)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.False(t, cfg.IsProduction())
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yml := `
app:
  port: "9000"
  env: production
mercadopago:
  accessToken: from-file
jobs:
  batchSize: 25
  goalsInterval: 2h
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte(yml), 0o600))

	t.Setenv("DATABASE_DSN", "postgres://localhost/syshair")
	t.Setenv("MERCADOPAGO_ACCESS_TOKEN", "from-env")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	t.Setenv("JOBS_DISPATCH_INTERVAL", "15m")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.App.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "from-env", cfg.MercadoPago.AccessToken, "env overrides file")
	assert.Equal(t, 25, cfg.Jobs.BatchSize)
	assert.Equal(t, 2*time.Hour, cfg.Jobs.GoalsInterval)
	assert.Equal(t, 15*time.Minute, cfg.Jobs.DispatchInterval)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	cfg.Jobs.BatchSize = 10
	assert.Error(t, cfg.Validate())

	cfg.Database.DSN = "postgres://localhost/syshair"
	cfg.Jobs.BatchSize = 0
	assert.Error(t, cfg.Validate())

	cfg.Jobs.BatchSize = 10
	assert.NoError(t, cfg.Validate())
}
