// Package config loads runtime settings from the environment, with an
// optional .env file for development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime knob of the service.
type Config struct {
	// Port is the HTTP listen port.
	Port string
	// DatabasePath is the SQLite file path, or ":memory:".
	DatabasePath string
	// Timezone is the guesthouse's IANA timezone. Day boundaries for
	// conflict checks and scheduled passes follow this location.
	Timezone *time.Location
	// ReminderHour is the local hour of the daily checkout-reminder pass.
	ReminderHour int
	// CheckoutHour is the local hour of the daily automatic-checkout pass.
	CheckoutHour int
	// ShutdownTimeout bounds graceful shutdown of the HTTP server.
	ShutdownTimeout time.Duration
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged in first when present; real environment variables win.
func Load() (Config, error) {
	godotenv.Load()

	tzName := envStr("TIMEZONE", "UTC")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return Config{}, fmt.Errorf("invalid TIMEZONE %q: %w", tzName, err)
	}

	cfg := Config{
		Port:            envStr("PORT", "8080"),
		DatabasePath:    envStr("DATABASE_PATH", "innkeep.db"),
		Timezone:        loc,
		ReminderHour:    envInt("REMINDER_HOUR", 10),
		CheckoutHour:    envInt("CHECKOUT_HOUR", 12),
		ShutdownTimeout: envDur("SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	if cfg.ReminderHour < 0 || cfg.ReminderHour > 23 {
		return Config{}, fmt.Errorf("REMINDER_HOUR must be 0-23, got %d", cfg.ReminderHour)
	}
	if cfg.CheckoutHour < 0 || cfg.CheckoutHour > 23 {
		return Config{}, fmt.Errorf("CHECKOUT_HOUR must be 0-23, got %d", cfg.CheckoutHour)
	}

	return cfg, nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return fallback
}

func envDur(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	return fallback
}
