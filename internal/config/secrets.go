package config

// RedactedConfig returns a shallow copy of cfg with sensitive fields replaced
// by the redaction placeholder "***". Use this when logging or printing the
// active configuration so secrets are never accidentally exposed.
func RedactedConfig(cfg *Config) Config {
	out := *cfg // shallow copy of the top-level struct

	redact(&out.Backend.ApiKey)
	redact(&out.Redis.Password)
	redact(&out.Server.AuthToken)
	redact(&out.Notify.TelegramToken)
	redact(&out.Notify.DiscordWebhookURL)

	// Copy slices so callers cannot mutate the original through the redacted
	// copy.
	out.Scan.Sports = copyStrings(cfg.Scan.Sports)
	out.Filters.Sports = copyStrings(cfg.Filters.Sports)
	out.Filters.Platforms = copyStrings(cfg.Filters.Platforms)
	out.Filters.MarketTypes = copyStrings(cfg.Filters.MarketTypes)
	out.Server.CORSOrigins = copyStrings(cfg.Server.CORSOrigins)
	out.Notify.Events = copyStrings(cfg.Notify.Events)

	return out
}

const redacted = "***"

// redact replaces a non-empty string with the redacted placeholder.
func redact(s *string) {
	if *s != "" {
		*s = redacted
	}
}

func copyStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
