package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("EVENTCAL_CONFIG_FILE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("port = %q, want %q", cfg.Port, "8080")
	}
	if cfg.DBPath != "eventcal.db" {
		t.Errorf("db path = %q, want %q", cfg.DBPath, "eventcal.db")
	}
	if cfg.Location.String() != "UTC" {
		t.Errorf("location = %v, want UTC", cfg.Location)
	}
	if cfg.AuthUsername != "" {
		t.Errorf("auth username = %q, want empty", cfg.AuthUsername)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("EVENTCAL_CONFIG_FILE", "")
	t.Setenv("EVENTCAL_PORT", "9090")
	t.Setenv("EVENTCAL_TIMEZONE", "America/Chicago")
	t.Setenv("EVENTCAL_WS_ORIGINS", "calendar.example.com, *.example.org")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("port = %q, want %q", cfg.Port, "9090")
	}
	if cfg.Location.String() != "America/Chicago" {
		t.Errorf("location = %v, want America/Chicago", cfg.Location)
	}
	if len(cfg.WSOrigins) != 2 || cfg.WSOrigins[1] != "*.example.org" {
		t.Errorf("ws origins = %v", cfg.WSOrigins)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eventcal.yaml")
	content := "port: \"7070\"\ndb_path: /tmp/cal.db\ntimezone: Europe/Berlin\nlog_level: debug\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("EVENTCAL_CONFIG_FILE", path)
	t.Setenv("EVENTCAL_PORT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBPath != "/tmp/cal.db" {
		t.Errorf("db path = %q, want %q", cfg.DBPath, "/tmp/cal.db")
	}
	if cfg.Location.String() != "Europe/Berlin" {
		t.Errorf("location = %v, want Europe/Berlin", cfg.Location)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log level = %q, want %q", cfg.LogLevel, "debug")
	}
}

func TestLoadBadTimezone(t *testing.T) {
	t.Setenv("EVENTCAL_CONFIG_FILE", "")
	t.Setenv("EVENTCAL_TIMEZONE", "Mars/Olympus_Mons")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown timezone")
	}
}

func TestLoadAuthRequiresHash(t *testing.T) {
	t.Setenv("EVENTCAL_CONFIG_FILE", "")
	t.Setenv("EVENTCAL_AUTH_USERNAME", "admin")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when username is set without a password hash")
	}
}
