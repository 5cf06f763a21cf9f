package config

import "time"

// ApplyBackendDefaults merges the scan backend's key/value config blob into
// c. Backend values rank below the file and environment: a key is applied
// only while the local value still equals the built-in default, so operator
// overrides always win. Unknown keys and mistyped values are ignored.
func (c *Config) ApplyBackendDefaults(values map[string]any) {
	def := Defaults()

	if v, ok := toFloat(values["refresh_interval"]); ok && v > 0 &&
		c.Cadence.ExtendedInterval.Duration == def.Cadence.ExtendedInterval.Duration {
		c.Cadence.ExtendedInterval.Duration = time.Duration(v * float64(time.Second))
	}
	if v, ok := toFloat(values["min_arb_threshold"]); ok &&
		c.Scan.MinPct == def.Scan.MinPct {
		c.Scan.MinPct = v
	}
	if v, ok := toFloat(values["notify_above_pct"]); ok &&
		c.Scan.NotifyAbovePct == def.Scan.NotifyAbovePct {
		c.Scan.NotifyAbovePct = v
	}
	if v, ok := toFloat(values["default_bankroll"]); ok && v > 0 &&
		c.Scan.DefaultBankroll == def.Scan.DefaultBankroll {
		c.Scan.DefaultBankroll = v
	}
	if v, ok := values["include_live"].(bool); ok &&
		c.Filters.IncludeLive == def.Filters.IncludeLive {
		c.Filters.IncludeLive = v
	}
	if v, ok := toStrings(values["sports"]); ok && len(c.Scan.Sports) == 0 {
		c.Scan.Sports = v
	}
}

// toFloat accepts the numeric shapes a decoded JSON blob can carry.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

func toStrings(v any) ([]string, bool) {
	items, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}
