// Package domain defines the core types shared across the arbwatch monitor:
// opportunities, legs, scan results, filter criteria, sort keys, and the
// closed enumerations used by the evaluation pipeline.
package domain

import "time"

// MarketType identifies the market an opportunity belongs to. The wire values
// come from the scan backend ("h2h", "spreads", ...); anything the monitor
// does not recognize parses to MarketUnknown and is excluded by any active
// type filter.
type MarketType string

const (
	MarketMoneyline      MarketType = "h2h"
	MarketSpreads        MarketType = "spreads"
	MarketTotals         MarketType = "totals"
	MarketBinary         MarketType = "binary"
	MarketPlayerPoints   MarketType = "player_points"
	MarketPlayerRebounds MarketType = "player_rebounds"
	MarketPlayerAssists  MarketType = "player_assists"
	MarketPlayerThrees   MarketType = "player_threes"
	MarketUnknown        MarketType = "unknown"
)

// ParseMarketType maps a wire value onto the closed enumeration, degrading
// unrecognized values to MarketUnknown.
func ParseMarketType(s string) MarketType {
	switch MarketType(s) {
	case MarketMoneyline, MarketSpreads, MarketTotals, MarketBinary,
		MarketPlayerPoints, MarketPlayerRebounds, MarketPlayerAssists, MarketPlayerThrees:
		return MarketType(s)
	default:
		return MarketUnknown
	}
}

// IsProp reports whether the type is one of the player-prop subtypes.
func (m MarketType) IsProp() bool {
	switch m {
	case MarketPlayerPoints, MarketPlayerRebounds, MarketPlayerAssists, MarketPlayerThrees:
		return true
	default:
		return false
	}
}

// ResolutionRisk grades how likely the two legs settle differently.
type ResolutionRisk string

const (
	RiskLow    ResolutionRisk = "low"
	RiskMedium ResolutionRisk = "medium"
	RiskHigh   ResolutionRisk = "high"
)

// Leg is one side of a two-leg opportunity, tied to a single platform.
// ImpliedProb is nil when the backend could not derive a probability for the
// leg; stake allocation is reported unavailable in that case.
type Leg struct {
	PlatformName string   `json:"name"`
	Side         string   `json:"side"`
	ImpliedProb  *float64 `json:"implied_prob"`
	AmericanOdds int      `json:"american_odds"`
	FeePct       float64  `json:"fee_pct"`
	URL          string   `json:"url"`
	MarketID     string   `json:"market_id"`
}

// FeeFraction returns the leg fee as a fraction of winnings (0-1).
func (l Leg) FeeFraction() float64 {
	return l.FeePct / 100
}

// Opportunity is one arbitrage (or +EV) candidate between two platforms for a
// single market. Instances are created fresh on every refresh and never
// mutated in place; only their ids survive into the next cycle via the change
// detector.
type Opportunity struct {
	ID           string     `json:"id"`
	Type         string     `json:"type"` // "arb" or "ev"
	Sport        string     `json:"sport"`
	Event        string     `json:"event"`
	EventDetail  string     `json:"event_detail"`
	MarketType   MarketType `json:"market_type"`
	IsProp       bool       `json:"is_prop"`
	CommenceTime *time.Time `json:"commence_time"`
	IsLive       bool       `json:"is_live"`
	TimeDisplay  string     `json:"time_display"`

	LegA Leg `json:"platform_a"`
	LegB Leg `json:"platform_b"`

	GrossArbPct     float64 `json:"gross_arb_pct"`
	NetArbPct       float64 `json:"net_arb_pct"`
	MatchConfidence float64 `json:"match_confidence"`

	ResolutionRisk ResolutionRisk `json:"resolution_risk"`
	RiskNote       string         `json:"risk_note"`

	Liquidity float64 `json:"liquidity"`
	Volume    float64 `json:"volume"`

	// IsNew is annotated by the change detector, not sent by the backend.
	IsNew bool `json:"is_new"`
}

// HasBothProbs reports whether both legs carry a strictly positive implied
// probability, the precondition for stake allocation.
func (o Opportunity) HasBothProbs() bool {
	return o.LegA.ImpliedProb != nil && *o.LegA.ImpliedProb > 0 &&
		o.LegB.ImpliedProb != nil && *o.LegB.ImpliedProb > 0
}
