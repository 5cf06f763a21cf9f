// Package config defines the top-level configuration for the arbwatch
// monitor and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by ARBWATCH_* environment variables.
type Config struct {
	Backend  BackendConfig  `toml:"backend"`
	Scan     ScanConfig     `toml:"scan"`
	Cadence  CadenceConfig  `toml:"cadence"`
	Filters  FiltersConfig  `toml:"filters"`
	Redis    RedisConfig    `toml:"redis"`
	Server   ServerConfig   `toml:"server"`
	Notify   NotifyConfig   `toml:"notify"`
	Mode     string         `toml:"mode"`
	LogLevel string         `toml:"log_level"`
}

// BackendConfig holds the ArbScanner backend endpoint and credentials.
type BackendConfig struct {
	BaseURL string `toml:"base_url"`
	ApiKey  string `toml:"api_key"`
}

// ScanConfig holds the evaluation parameters for each refresh cycle.
type ScanConfig struct {
	MinPct          float64  `toml:"min_pct"`
	DefaultBankroll float64  `toml:"default_bankroll"`
	NotifyAbovePct  float64  `toml:"notify_above_pct"`
	Sports          []string `toml:"sports"`
}

// CadenceConfig holds the adaptive polling parameters. ExtendedInterval
// applies only during the midday band; the evening band always runs at the
// fixed fast interval.
type CadenceConfig struct {
	Timezone         string   `toml:"timezone"`
	ExtendedInterval duration `toml:"extended_interval"`
}

// FiltersConfig holds the startup filter state. All fields empty means
// everything passes.
type FiltersConfig struct {
	Sports      []string `toml:"sports"`
	Platforms   []string `toml:"platforms"`
	MarketTypes []string `toml:"market_types"`
	IncludeLive bool     `toml:"include_live"`
	MinNetPct   float64  `toml:"min_net_pct"`
}

// RedisConfig holds Redis connection parameters for the signal bus. Redis is
// optional; when Enabled is false, refresh events stay in-process.
type RedisConfig struct {
	Enabled    bool   `toml:"enabled"`
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "45s", "2m").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "45s" or "2m".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Port        int      `toml:"port"`
	AuthToken   string   `toml:"auth_token"`
	CORSOrigins []string `toml:"cors_origins"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Backend: BackendConfig{
			BaseURL: "http://localhost:8000/api",
		},
		Scan: ScanConfig{
			MinPct:          0.5,
			DefaultBankroll: 1000,
			NotifyAbovePct:  2.0,
		},
		Cadence: CadenceConfig{
			Timezone:         "America/New_York",
			ExtendedInterval: duration{60 * time.Second},
		},
		Filters: FiltersConfig{
			IncludeLive: true,
		},
		Redis: RedisConfig{
			Enabled:    false,
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
			TLSEnabled: false,
		},
		Server: ServerConfig{
			Enabled:     true,
			Port:        8080,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Notify: NotifyConfig{
			Events: []string{"new_arb", "scan_error"},
		},
		Mode:     "monitor",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"monitor": true,
	"server":  true,
	"scan":    true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	// Mode
	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: monitor, server, scan)", c.Mode))
	}

	// LogLevel
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Backend
	if strings.TrimSpace(c.Backend.BaseURL) == "" {
		errs = append(errs, "backend: base_url must not be empty")
	}

	// Scan
	if c.Scan.MinPct < 0 {
		errs = append(errs, "scan: min_pct must be >= 0")
	}
	if c.Scan.DefaultBankroll <= 0 {
		errs = append(errs, "scan: default_bankroll must be > 0")
	}
	if c.Scan.NotifyAbovePct < 0 {
		errs = append(errs, "scan: notify_above_pct must be >= 0")
	}

	// Cadence
	if c.Cadence.Timezone != "" {
		if _, err := time.LoadLocation(c.Cadence.Timezone); err != nil {
			errs = append(errs, fmt.Sprintf("cadence: unknown timezone %q", c.Cadence.Timezone))
		}
	}
	if c.Cadence.ExtendedInterval.Duration < 5*time.Second {
		errs = append(errs, "cadence: extended_interval must be >= 5s")
	}

	// Filters
	if c.Filters.MinNetPct < 0 {
		errs = append(errs, "filters: min_net_pct must be >= 0")
	}

	// Redis
	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty when enabled")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}
	}

	// Server
	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// Location resolves the cadence timezone, falling back to UTC when it does
// not parse. Validate reports the bad value separately.
func (c *Config) Location() *time.Location {
	if c.Cadence.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Cadence.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
