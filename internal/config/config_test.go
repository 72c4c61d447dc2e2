package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want %q", cfg.Port, "8080")
	}
	if cfg.DatabasePath != "innkeep.db" {
		t.Errorf("DatabasePath = %q, want %q", cfg.DatabasePath, "innkeep.db")
	}
	if cfg.Timezone != time.UTC {
		t.Errorf("Timezone = %v, want UTC", cfg.Timezone)
	}
	if cfg.ReminderHour != 10 {
		t.Errorf("ReminderHour = %d, want 10", cfg.ReminderHour)
	}
	if cfg.CheckoutHour != 12 {
		t.Errorf("CheckoutHour = %d, want 12", cfg.CheckoutHour)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("TIMEZONE", "Europe/Madrid")
	t.Setenv("CHECKOUT_HOUR", "14")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want %q", cfg.Port, "9090")
	}
	if cfg.Timezone.String() != "Europe/Madrid" {
		t.Errorf("Timezone = %v, want Europe/Madrid", cfg.Timezone)
	}
	if cfg.CheckoutHour != 14 {
		t.Errorf("CheckoutHour = %d, want 14", cfg.CheckoutHour)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 30s", cfg.ShutdownTimeout)
	}
}

func TestLoad_InvalidTimezone(t *testing.T) {
	t.Setenv("TIMEZONE", "Mars/Olympus")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid timezone")
	}
}

func TestLoad_HourOutOfRange(t *testing.T) {
	t.Setenv("CHECKOUT_HOUR", "25")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for out-of-range hour")
	}
}

func TestLoad_MalformedIntFallsBack(t *testing.T) {
	t.Setenv("REMINDER_HOUR", "soonish")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ReminderHour != 10 {
		t.Errorf("ReminderHour = %d, want fallback 10", cfg.ReminderHour)
	}
}
