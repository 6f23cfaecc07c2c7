package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"cryptoScanBot/internal/adapters/logger" // Import the logger package for LogLevel
)

// Config holds the process-level (bootstrap) configuration. Scanner thresholds
// and schedules live in Settings, which is persisted separately and can be
// updated at runtime through the control API.
type Config struct {
	// Telegram delivery
	TelegramToken  string
	TelegramChatID string

	// Storage
	DataDir      string // Cooldown files and the settings document live here
	DBPath       string // SQLite alert history
	SettingsPath string // Persisted scanner settings (JSON)

	// Exchange
	UseTestnet   bool
	FetchTimeout time.Duration // Bound on a single snapshot/series fetch

	// Control API
	ListenAddr string

	// Logging
	LogLevel logger.LogLevel
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var errs []string // Collect validation errors

	// Telegram (optional: without it alerts go to the console dispatcher)
	cfg.TelegramToken = getEnv("TELEGRAM_TOKEN", "")
	cfg.TelegramChatID = getEnv("TELEGRAM_CHAT_ID", "")

	// Storage
	cfg.DataDir = getEnv("DATA_DIR", "./data")
	if cfg.DataDir == "" {
		errs = append(errs, "DATA_DIR must be set")
	}
	cfg.DBPath = getEnv("DB_PATH", "./data/scanner.db")
	if cfg.DBPath == "" {
		errs = append(errs, "DB_PATH must be set")
	}
	cfg.SettingsPath = getEnv("SETTINGS_PATH", "./data/scanner_config.json")
	if cfg.SettingsPath == "" {
		errs = append(errs, "SETTINGS_PATH must be set")
	}

	// Exchange
	cfg.UseTestnet = getEnvAsBool("IS_TESTNET", false)
	fetchTimeoutSeconds := getEnvAsInt("FETCH_TIMEOUT_SECONDS", 10)
	if fetchTimeoutSeconds <= 0 {
		errs = append(errs, "FETCH_TIMEOUT_SECONDS must be positive")
	}
	cfg.FetchTimeout = time.Duration(fetchTimeoutSeconds) * time.Second

	// Control API
	cfg.ListenAddr = getEnv("LISTEN_ADDR", ":8080")

	// Logging
	logLevelStr := getEnv("LOG_LEVEL", "INFO")
	cfg.LogLevel = logger.ParseLevel(logLevelStr) // Use the parser from the logger package

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// TelegramConfigured reports whether both delivery credentials are present.
func (c *Config) TelegramConfigured() bool {
	return c.TelegramToken != "" && c.TelegramChatID != ""
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
