package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	BackendVault    = "vault"
	BackendPostgres = "postgres"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	TelegramToken      string
	NotifyChatID       int64
	AdminTelegramID    int64
	KavitaURL          string
	VaultURL           string
	CheckIntervalHours int // Hours between scheduled cycles; must be positive
	LookbackHours      int // Maximum item age considered "new"
	NotifiedBackend    string
	DatabaseURL        string // Required only for the postgres backend
	LogLevel           string
	Environment        string
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is not set")
	}

	chatIDStr := os.Getenv("NOTIFY_CHAT_ID")
	if chatIDStr == "" {
		return nil, fmt.Errorf("NOTIFY_CHAT_ID is not set")
	}
	cfg.NotifyChatID, err = strconv.ParseInt(chatIDStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIFY_CHAT_ID: %w", err)
	}

	adminIDStr := os.Getenv("ADMIN_TELEGRAM_ID")
	if adminIDStr == "" {
		return nil, fmt.Errorf("ADMIN_TELEGRAM_ID is not set")
	}
	cfg.AdminTelegramID, err = strconv.ParseInt(adminIDStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
	}

	cfg.KavitaURL = strings.TrimRight(os.Getenv("KAVITA_URL"), "/")
	if cfg.KavitaURL == "" {
		return nil, fmt.Errorf("KAVITA_URL is not set")
	}

	cfg.VaultURL = strings.TrimRight(os.Getenv("VAULT_URL"), "/")
	if cfg.VaultURL == "" {
		return nil, fmt.Errorf("VAULT_URL is not set")
	}

	// The scheduler refuses to start on a bad interval, so there is no
	// default here: an unset or non-positive value is a configuration error.
	intervalStr := os.Getenv("CHECK_INTERVAL_HOURS")
	if intervalStr == "" {
		return nil, fmt.Errorf("CHECK_INTERVAL_HOURS is not set")
	}
	cfg.CheckIntervalHours, err = strconv.Atoi(intervalStr)
	if err != nil {
		return nil, fmt.Errorf("invalid CHECK_INTERVAL_HOURS: %w", err)
	}
	if cfg.CheckIntervalHours <= 0 {
		return nil, fmt.Errorf("CHECK_INTERVAL_HOURS must be a positive integer, got %d", cfg.CheckIntervalHours)
	}

	lookbackStr := os.Getenv("LOOKBACK_HOURS")
	if lookbackStr == "" {
		cfg.LookbackHours = 168 // Default: 7 days
	} else {
		cfg.LookbackHours, err = strconv.Atoi(lookbackStr)
		if err != nil {
			return nil, fmt.Errorf("invalid LOOKBACK_HOURS: %w", err)
		}
		if cfg.LookbackHours <= 0 {
			return nil, fmt.Errorf("LOOKBACK_HOURS must be a positive integer, got %d", cfg.LookbackHours)
		}
	}

	cfg.NotifiedBackend = strings.ToLower(os.Getenv("NOTIFIED_BACKEND"))
	if cfg.NotifiedBackend == "" {
		cfg.NotifiedBackend = BackendVault // Default backend
	}
	switch cfg.NotifiedBackend {
	case BackendVault:
	case BackendPostgres:
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is not set (required for NOTIFIED_BACKEND=postgres)")
		}
	default:
		return nil, fmt.Errorf("unknown NOTIFIED_BACKEND: %q", cfg.NotifiedBackend)
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	return cfg, nil
}
