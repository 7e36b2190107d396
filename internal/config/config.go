package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Config holds all configuration for the application
type Config struct {
	Port               string
	DataDir            string
	Location           *time.Location
	ServiceLevelTarget float64
	CallbackWindow     float64
	HolidayAPIURL      string
	HolidayCountry     string
	HolidayRegion      string
	HolidayTimeout     time.Duration
	InternalExtensions []string
	AllowedOrigins     []string
	ReloadSchedule     string
	WatchDataDir       bool
	LogLevel           string
	Environment        string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		DataDir:            getEnv("DATA_DIR", "./data"),
		HolidayAPIURL:      getEnv("HOLIDAY_API_URL", "https://date.nager.at/api/v3"),
		HolidayCountry:     getEnv("HOLIDAY_COUNTRY", "AU"),
		HolidayRegion:      getEnv("HOLIDAY_REGION", "AU-ACT"),
		InternalExtensions: splitList(os.Getenv("INTERNAL_EXTENSIONS")),
		AllowedOrigins:     splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:5173")),
		ReloadSchedule:     strings.TrimSpace(os.Getenv("RELOAD_SCHEDULE")),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		Environment:        getEnv("ENVIRONMENT", "local"),
	}

	loc, err := time.LoadLocation(getEnv("TIMEZONE", "Australia/Sydney"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	cfg.Location = loc

	if cfg.ServiceLevelTarget, err = positiveFloat("SERVICE_LEVEL_TARGET", "90"); err != nil {
		return nil, err
	}
	if cfg.CallbackWindow, err = positiveFloat("CALLBACK_WINDOW_HOURS", "24"); err != nil {
		return nil, err
	}

	timeout, err := strconv.Atoi(getEnv("HOLIDAY_TIMEOUT_SEC", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid HOLIDAY_TIMEOUT_SEC: %w", err)
	}
	cfg.HolidayTimeout = time.Duration(timeout) * time.Second

	if cfg.WatchDataDir, err = strconv.ParseBool(getEnv("WATCH_DATA_DIR", "false")); err != nil {
		return nil, fmt.Errorf("invalid WATCH_DATA_DIR: %w", err)
	}

	if cfg.ReloadSchedule != "" {
		if _, err := cron.ParseStandard(cfg.ReloadSchedule); err != nil {
			return nil, fmt.Errorf("invalid RELOAD_SCHEDULE: %w", err)
		}
	}

	return cfg, nil
}

func positiveFloat(key, def string) (float64, error) {
	v, err := strconv.ParseFloat(getEnv(key, def), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return v, nil
}

// splitList splits a comma separated value, dropping empty entries.
func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
