package config

import (
	"fmt"
	"os"
	"time"
)

// Backend names accepted in CALENDAR_BACKEND.
const (
	BackendGoogle = "google"
	BackendICloud = "icloud"
)

// Config carries everything the booking components need: the target
// calendar, the default timezone for naive timestamps, and credentials for
// the chosen backend. It is built once at startup and passed by value, so
// components can be tested with different zones and calendars without any
// process-wide state.
type Config struct {
	Backend    string
	CalendarID string
	Timezone   string
	LogLevel   string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleAccount      string

	ICloudUsername string
	ICloudPassword string
	ICloudCalendar string
}

// FromEnv builds a Config from the environment. Call godotenv.Load first if
// an .env file should contribute.
func FromEnv() (Config, error) {
	cfg := Config{
		Backend:    envOr("CALENDAR_BACKEND", BackendGoogle),
		CalendarID: envOr("CALENDAR_ID", "primary"),
		Timezone:   envOr("DEFAULT_TIMEZONE", "UTC"),
		LogLevel:   envOr("LOG_LEVEL", "info"),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleAccount:      envOr("GOOGLE_ACCOUNT", "default"),

		ICloudUsername: os.Getenv("ICLOUD_USERNAME"),
		ICloudPassword: os.Getenv("ICLOUD_APP_SPECIFIC_PASSWORD"),
		ICloudCalendar: os.Getenv("ICLOUD_CALENDAR_NAME"),
	}

	if cfg.Backend != BackendGoogle && cfg.Backend != BackendICloud {
		return Config{}, fmt.Errorf("unknown CALENDAR_BACKEND %q (want %q or %q)", cfg.Backend, BackendGoogle, BackendICloud)
	}
	if _, err := cfg.Location(); err != nil {
		return Config{}, fmt.Errorf("invalid DEFAULT_TIMEZONE %q: %w", cfg.Timezone, err)
	}
	return cfg, nil
}

// Location resolves the configured default timezone.
func (c Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
