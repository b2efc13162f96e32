package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the runtime configuration of the server.
type Config struct {
	Port      string
	DBPath    string
	LogLevel  string
	LogFormat string
	BaseURL   string

	// Location is the zone treated as local time for all-day events and
	// recurrence bounds.
	Location *time.Location

	AuthUsername     string
	AuthPasswordHash string

	WSOrigins []string
}

// Load reads configuration from EVENTCAL_* environment variables and, when
// EVENTCAL_CONFIG_FILE is set, from that file. Environment wins.
func Load() (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("EVENTCAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("port", "8080")
	v.SetDefault("db_path", "eventcal.db")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("base_url", "")
	v.SetDefault("timezone", "UTC")
	v.SetDefault("auth_username", "")
	v.SetDefault("auth_password_hash", "")
	v.SetDefault("ws_origins", []string{})

	_ = v.BindEnv("config_file", "EVENTCAL_CONFIG_FILE")
	if path := strings.TrimSpace(v.GetString("config_file")); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	tzName := strings.TrimSpace(v.GetString("timezone"))
	if tzName == "" {
		tzName = "UTC"
	}
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return Config{}, fmt.Errorf("load timezone %q: %w", tzName, err)
	}

	port := strings.TrimSpace(v.GetString("port"))
	if port == "" {
		port = "8080"
	}

	dbPath := strings.TrimSpace(v.GetString("db_path"))
	if dbPath == "" {
		dbPath = "eventcal.db"
	}

	username := strings.TrimSpace(v.GetString("auth_username"))
	hash := strings.TrimSpace(v.GetString("auth_password_hash"))
	if username != "" && hash == "" {
		return Config{}, fmt.Errorf("auth_username is set but auth_password_hash is empty")
	}

	return Config{
		Port:             port,
		DBPath:           dbPath,
		LogLevel:         v.GetString("log_level"),
		LogFormat:        v.GetString("log_format"),
		BaseURL:          strings.TrimRight(strings.TrimSpace(v.GetString("base_url")), "/"),
		Location:         loc,
		AuthUsername:     username,
		AuthPasswordHash: hash,
		WSOrigins:        splitList(v.GetStringSlice("ws_origins")),
	}, nil
}

// splitList flattens comma-separated entries, which is how a list arrives
// from a single environment variable.
func splitList(items []string) []string {
	var out []string
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
