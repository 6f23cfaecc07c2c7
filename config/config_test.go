package config

import (
	"testing"
	"time"

	"cryptoScanBot/internal/adapters/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, "./data/scanner.db", cfg.DBPath)
	assert.Equal(t, "./data/scanner_config.json", cfg.SettingsPath)
	assert.Equal(t, 10*time.Second, cfg.FetchTimeout)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, logger.LevelInfo, cfg.LogLevel)
	assert.False(t, cfg.UseTestnet)
	assert.False(t, cfg.TelegramConfigured())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "tok")
	t.Setenv("TELEGRAM_CHAT_ID", "42")
	t.Setenv("DATA_DIR", "/var/lib/scanner")
	t.Setenv("FETCH_TIMEOUT_SECONDS", "5")
	t.Setenv("IS_TESTNET", "true")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LISTEN_ADDR", ":9090")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.TelegramConfigured())
	assert.Equal(t, "/var/lib/scanner", cfg.DataDir)
	assert.Equal(t, 5*time.Second, cfg.FetchTimeout)
	assert.True(t, cfg.UseTestnet)
	assert.Equal(t, logger.LevelDebug, cfg.LogLevel)
	assert.Equal(t, ":9090", cfg.ListenAddr)
}

func TestLoadConfigRejectsBadTimeout(t *testing.T) {
	t.Setenv("FETCH_TIMEOUT_SECONDS", "-1")

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestTelegramConfigured(t *testing.T) {
	cfg := &Config{TelegramToken: "tok"}
	assert.False(t, cfg.TelegramConfigured())
	cfg.TelegramChatID = "42"
	assert.True(t, cfg.TelegramConfigured())
}
