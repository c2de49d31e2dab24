package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.DB.MaxOpenConns)
	assert.Equal(t, 5, cfg.DB.MaxIdleConns)
	assert.Equal(t, "migrations", cfg.DB.MigrationsDir)
	assert.Equal(t, "", cfg.Redis.URL)
	assert.Equal(t, "bulkpay:events", cfg.Redis.StreamKey)
	assert.Equal(t, 8080, cfg.Server.APIPort)
	assert.Equal(t, 9090, cfg.Server.MetricsPort)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.True(t, cfg.Tracing.Insecure)
	assert.Equal(t, 15*time.Minute, cfg.Reconcile.Interval)
	assert.Equal(t, "", cfg.Alert.SlackWebhookURL)
	assert.Equal(t, "", cfg.Alert.WebhookURL)
	assert.Equal(t, 30*time.Minute, cfg.Alert.Cooldown)
	assert.Equal(t, "ed25519", cfg.Auth.Mode)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_URL", "postgres://u:p@db:5432/bulkpay")
	t.Setenv("DB_MAX_OPEN_CONNS", "50")
	t.Setenv("REDIS_URL", "redis://cache:6379")
	t.Setenv("API_PORT", "8888")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("RECONCILE_INTERVAL_MIN", "5")
	t.Setenv("ALERT_SLACK_WEBHOOK_URL", "https://hooks.slack.example/T000/B000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://u:p@db:5432/bulkpay", cfg.DB.URL)
	assert.Equal(t, 50, cfg.DB.MaxOpenConns)
	assert.Equal(t, "redis://cache:6379", cfg.Redis.URL)
	assert.Equal(t, 8888, cfg.Server.APIPort)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 5*time.Minute, cfg.Reconcile.Interval)
	assert.Equal(t, "https://hooks.slack.example/T000/B000", cfg.Alert.SlackWebhookURL)
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("API_PORT", "70000")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_InvalidLogFormat(t *testing.T) {
	t.Setenv("LOG_FORMAT", "xml")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_AuthModeNone(t *testing.T) {
	t.Setenv("AUTH_MODE", "none")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "none", cfg.Auth.Mode)
}

func TestLoad_InvalidAuthMode(t *testing.T) {
	t.Setenv("AUTH_MODE", "hmac")

	_, err := Load()
	assert.Error(t, err)
}

func TestGetEnvInt_MalformedFallsBack(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.DB.MaxOpenConns)
}
