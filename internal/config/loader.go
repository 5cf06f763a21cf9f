package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies ARBWATCH_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// LoadOrDefaults behaves like Load but falls back to pure defaults plus env
// overrides when no config file exists at path. Used when arbwatch is run
// without -config.
func LoadOrDefaults(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		cfg := Defaults()
		_ = godotenv.Load()
		applyEnvOverrides(&cfg)
		return &cfg, nil
	}
	return Load(path)
}

// applyEnvOverrides reads well-known ARBWATCH_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Backend ──
	setStr(&cfg.Backend.BaseURL, "ARBWATCH_BACKEND_BASE_URL")
	setStr(&cfg.Backend.ApiKey, "ODDS_API_KEY") // compatibility alias, lowest precedence
	setStr(&cfg.Backend.ApiKey, "ARBWATCH_BACKEND_API_KEY")

	// ── Scan ──
	setFloat64(&cfg.Scan.MinPct, "ARBWATCH_SCAN_MIN_PCT")
	setFloat64(&cfg.Scan.DefaultBankroll, "ARBWATCH_SCAN_DEFAULT_BANKROLL")
	setFloat64(&cfg.Scan.NotifyAbovePct, "ARBWATCH_SCAN_NOTIFY_ABOVE_PCT")
	setStringSlice(&cfg.Scan.Sports, "ARBWATCH_SCAN_SPORTS")

	// ── Cadence ──
	setStr(&cfg.Cadence.Timezone, "ARBWATCH_CADENCE_TIMEZONE")
	setDuration(&cfg.Cadence.ExtendedInterval, "ARBWATCH_CADENCE_EXTENDED_INTERVAL")

	// ── Filters ──
	setStringSlice(&cfg.Filters.Sports, "ARBWATCH_FILTERS_SPORTS")
	setStringSlice(&cfg.Filters.Platforms, "ARBWATCH_FILTERS_PLATFORMS")
	setStringSlice(&cfg.Filters.MarketTypes, "ARBWATCH_FILTERS_MARKET_TYPES")
	setBool(&cfg.Filters.IncludeLive, "ARBWATCH_FILTERS_INCLUDE_LIVE")
	setFloat64(&cfg.Filters.MinNetPct, "ARBWATCH_FILTERS_MIN_NET_PCT")

	// ── Redis ──
	setBool(&cfg.Redis.Enabled, "ARBWATCH_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "ARBWATCH_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "ARBWATCH_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "ARBWATCH_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "ARBWATCH_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "ARBWATCH_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "ARBWATCH_REDIS_TLS_ENABLED")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "ARBWATCH_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "ARBWATCH_SERVER_PORT")
	setStr(&cfg.Server.AuthToken, "ARBWATCH_SERVER_AUTH_TOKEN")
	setStringSlice(&cfg.Server.CORSOrigins, "ARBWATCH_SERVER_CORS_ORIGINS")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "ARBWATCH_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "ARBWATCH_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "ARBWATCH_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "ARBWATCH_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "ARBWATCH_MODE")
	setStr(&cfg.LogLevel, "ARBWATCH_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
