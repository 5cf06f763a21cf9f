package scanapi

import (
	"time"

	"github.com/alanyoungcy/arbwatch/internal/domain"
	"github.com/alanyoungcy/arbwatch/internal/odds"
)

// Wire DTOs for the ArbScanner backend. Timestamps arrive as ISO-8601
// strings (sometimes empty), so decoding goes through these shapes before
// conversion to domain types.

type scanResponse struct {
	Opportunities *[]wireOpportunity `json:"opportunities"`
	Meta          wireMeta           `json:"meta"`
}

type wireMeta struct {
	ScanTime        float64           `json:"scan_time"`
	Timestamp       string            `json:"timestamp"`
	TotalCount      int               `json:"total_opportunities"`
	ArbCount        int               `json:"arb_count"`
	EVCount         int               `json:"ev_count"`
	Sources         map[string]string `json:"sources"`
	Errors          []string          `json:"errors"`
	IsDemo          bool              `json:"is_demo"`
	PolyCount       int               `json:"poly_count"`
	KalshiCount     int               `json:"kalshi_count"`
	SportsbookCount int               `json:"sportsbook_count"`
}

type wireLeg struct {
	Name         string   `json:"name"`
	Side         string   `json:"side"`
	ImpliedProb  *float64 `json:"implied_prob"`
	AmericanOdds int      `json:"american_odds"`
	FeePct       float64  `json:"fee_pct"`
	URL          string   `json:"url"`
	MarketID     string   `json:"market_id"`
}

type wireOpportunity struct {
	ID              string  `json:"id"`
	Type            string  `json:"type"`
	Sport           string  `json:"sport"`
	Event           string  `json:"event"`
	EventDetail     string  `json:"event_detail"`
	CommenceTime    string  `json:"commence_time"`
	TimeDisplay     string  `json:"time_display"`
	IsLive          bool    `json:"is_live"`
	LegA            wireLeg `json:"platform_a"`
	LegB            wireLeg `json:"platform_b"`
	MarketType      string  `json:"market_type"`
	GrossArbPct     float64 `json:"gross_arb_pct"`
	NetArbPct       float64 `json:"net_arb_pct"`
	MatchConfidence float64 `json:"match_confidence"`
	ResolutionRisk  string  `json:"resolution_risk"`
	RiskNote        string  `json:"risk_note"`
	IsProp          bool    `json:"is_prop"`
	Liquidity       float64 `json:"liquidity"`
	Volume          float64 `json:"volume"`
}

func (w wireOpportunity) toDomain() domain.Opportunity {
	o := domain.Opportunity{
		ID:              w.ID,
		Type:            w.Type,
		Sport:           w.Sport,
		Event:           w.Event,
		EventDetail:     w.EventDetail,
		MarketType:      domain.ParseMarketType(w.MarketType),
		IsProp:          w.IsProp,
		IsLive:          w.IsLive,
		TimeDisplay:     w.TimeDisplay,
		LegA:            w.LegA.toDomain(),
		LegB:            w.LegB.toDomain(),
		GrossArbPct:     w.GrossArbPct,
		NetArbPct:       w.NetArbPct,
		MatchConfidence: w.MatchConfidence,
		ResolutionRisk:  parseRisk(w.ResolutionRisk),
		RiskNote:        w.RiskNote,
		Liquidity:       w.Liquidity,
		Volume:          w.Volume,
	}
	if t, ok := parseTimestamp(w.CommenceTime); ok {
		o.CommenceTime = &t
	}
	return o
}

// toDomain normalizes a wire leg: when the feed sends only one of the two
// price representations, the other is derived so downstream code never has
// to convert.
func (w wireLeg) toDomain() domain.Leg {
	leg := domain.Leg{
		PlatformName: w.Name,
		Side:         w.Side,
		ImpliedProb:  w.ImpliedProb,
		AmericanOdds: w.AmericanOdds,
		FeePct:       w.FeePct,
		URL:          w.URL,
		MarketID:     w.MarketID,
	}
	if leg.AmericanOdds == 0 && leg.ImpliedProb != nil {
		leg.AmericanOdds = odds.ToAmerican(*leg.ImpliedProb)
	}
	if leg.ImpliedProb == nil && leg.AmericanOdds != 0 {
		p := odds.ImpliedFromAmerican(leg.AmericanOdds)
		leg.ImpliedProb = &p
	}
	return leg
}

func parseRisk(s string) domain.ResolutionRisk {
	switch domain.ResolutionRisk(s) {
	case domain.RiskLow, domain.RiskMedium, domain.RiskHigh:
		return domain.ResolutionRisk(s)
	default:
		// Conservative default for values the monitor does not recognize.
		return domain.RiskHigh
	}
}

// parseTimestamp accepts RFC 3339 with or without fractional seconds and the
// backend's "+00:00" offset form. Empty strings report ok=false.
func parseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func (m wireMeta) toDomain() domain.ScanMeta {
	meta := domain.ScanMeta{
		ScanTime:        m.ScanTime,
		TotalCount:      m.TotalCount,
		ArbCount:        m.ArbCount,
		EVCount:         m.EVCount,
		Errors:          m.Errors,
		IsDemo:          m.IsDemo,
		PolyCount:       m.PolyCount,
		KalshiCount:     m.KalshiCount,
		SportsbookCount: m.SportsbookCount,
	}
	if t, ok := parseTimestamp(m.Timestamp); ok {
		meta.Timestamp = t
	}
	if len(m.Sources) > 0 {
		meta.Sources = make(map[string]domain.SourceStatus, len(m.Sources))
		for name, status := range m.Sources {
			meta.Sources[name] = domain.ParseSourceStatus(status)
		}
	}
	return meta
}

// DetailParams identifies the two legs for the deep-dive endpoint.
type DetailParams struct {
	PlatformA string
	PlatformB string
	MarketIDA string
	MarketIDB string
	ProbA     float64
	ProbB     float64
	FeeA      float64
	FeeB      float64
	Bankroll  float64
}

// Detail is the backend's opportunity-detail refinement. The order book
// payloads are passed through opaquely; the monitor computes its own stake
// figures.
type Detail struct {
	OrderbookA map[string]any `json:"orderbook_a"`
	OrderbookB map[string]any `json:"orderbook_b"`
	Stakes     map[string]any `json:"stakes"`
	Timestamp  string         `json:"timestamp"`
}
