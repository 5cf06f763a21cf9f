package scanapi

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alanyoungcy/arbwatch/internal/domain"
)

const scanBody = `{
  "opportunities": [
    {
      "id": "abc123", "type": "arb", "sport": "NBA",
      "event": "Lakers @ Celtics — ML", "event_detail": "Will the Lakers beat the Celtics?",
      "commence_time": "2026-03-14T23:30:00+00:00", "time_display": "4h", "is_live": false,
      "platform_a": {"name": "Kalshi", "side": "Lakers", "implied_prob": 0.42,
        "american_odds": 138, "fee_pct": 2.94, "url": "https://kalshi.com/markets/x", "market_id": "KXNBAGAME-X"},
      "platform_b": {"name": "Pinnacle", "side": "Celtics", "implied_prob": 0.53,
        "american_odds": -113, "fee_pct": 0, "url": "", "market_id": ""},
      "market_type": "h2h", "gross_arb_pct": 5.0, "net_arb_pct": 3.78,
      "match_confidence": 0.85, "resolution_risk": "low", "risk_note": "",
      "is_prop": false, "liquidity": 1200, "volume": 54000
    },
    {
      "id": "def456", "type": "arb", "sport": "NFL", "event": "x", "event_detail": "",
      "commence_time": "", "time_display": "", "is_live": true,
      "platform_a": {"name": "Polymarket", "side": "Yes", "implied_prob": null,
        "american_odds": 0, "fee_pct": 2, "url": "", "market_id": "m"},
      "platform_b": {"name": "FanDuel", "side": "Over 45.5", "implied_prob": 0.5,
        "american_odds": -100, "fee_pct": 0, "url": "", "market_id": ""},
      "market_type": "exotic_parlay", "gross_arb_pct": 1, "net_arb_pct": 0.5,
      "match_confidence": 0.4, "resolution_risk": "weird", "risk_note": "n",
      "is_prop": false, "liquidity": 0, "volume": 0
    }
  ],
  "meta": {
    "scan_time": 3.41, "timestamp": "2026-03-14T19:30:12.123456+00:00",
    "total_opportunities": 2, "arb_count": 2, "ev_count": 0,
    "sources": {"polymarket": "ok", "kalshi": "ok_no_arbs", "sportsbook": "mystery"},
    "errors": [], "is_demo": false,
    "poly_count": 140, "kalshi_count": 480, "sportsbook_count": 3200
  }
}`

func TestScanDecodesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/scan" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("min_pct"); got != "0.5" {
			t.Errorf("min_pct = %q, want 0.5", got)
		}
		if got := r.URL.Query().Get("api_key"); got != "k" {
			t.Errorf("api_key = %q, want k", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(scanBody))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k")
	res, err := c.Scan(context.Background(), ScanParams{MinPct: 0.5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.Opportunities) != 2 {
		t.Fatalf("opportunity count = %d, want 2", len(res.Opportunities))
	}

	first := res.Opportunities[0]
	if first.ID != "abc123" || first.MarketType != domain.MarketMoneyline {
		t.Errorf("first opportunity decoded wrong: %+v", first)
	}
	if first.CommenceTime == nil || first.CommenceTime.Hour() != 23 {
		t.Errorf("commence time not parsed: %v", first.CommenceTime)
	}
	if first.LegA.ImpliedProb == nil || *first.LegA.ImpliedProb != 0.42 {
		t.Errorf("leg a implied prob not decoded: %v", first.LegA.ImpliedProb)
	}

	second := res.Opportunities[1]
	if second.CommenceTime != nil {
		t.Error("empty commence_time should decode to nil")
	}
	if second.LegA.ImpliedProb != nil {
		t.Error("null implied_prob should stay nil")
	}
	if second.MarketType != domain.MarketUnknown {
		t.Errorf("unrecognized market type = %q, want unknown", second.MarketType)
	}
	if second.ResolutionRisk != domain.RiskHigh {
		t.Errorf("unrecognized risk should degrade to high, got %q", second.ResolutionRisk)
	}

	if res.Meta.Sources["kalshi"] != domain.StatusOKNoArbs {
		t.Errorf("kalshi status = %q", res.Meta.Sources["kalshi"])
	}
	if res.Meta.Sources["sportsbook"] != domain.StatusError {
		t.Errorf("unknown source status must degrade to error, got %q", res.Meta.Sources["sportsbook"])
	}
	if res.Meta.Timestamp.IsZero() {
		t.Error("meta timestamp not parsed")
	}
}

func TestScanMissingOpportunitiesKeyIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"meta": {"scan_time": 1.0}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.Scan(context.Background(), ScanParams{})
	if !errors.Is(err, domain.ErrMalformedResponse) {
		t.Fatalf("error = %v, want ErrMalformedResponse", err)
	}
}

func TestScanNonJSONBodyIsMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>gateway timeout</html>"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.Scan(context.Background(), ScanParams{})
	if !errors.Is(err, domain.ErrMalformedResponse) {
		t.Fatalf("error = %v, want ErrMalformedResponse", err)
	}
}

func TestScanEmptyListIsNotFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"opportunities": [], "meta": {"scan_time": 0.2}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	res, err := c.Scan(context.Background(), ScanParams{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Opportunities) != 0 {
		t.Fatalf("want empty list, got %d", len(res.Opportunities))
	}
}

func TestGetConfig(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"config": {"refresh_interval": 45, "notify_above_pct": 1.5}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	cfg, err := c.GetConfig(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg["refresh_interval"].(float64) != 45 {
		t.Errorf("refresh_interval = %v", cfg["refresh_interval"])
	}
}

func TestLegNormalizationDerivesMissingRepresentation(t *testing.T) {
	p := 0.25
	leg := wireLeg{Name: "Kalshi", ImpliedProb: &p}.toDomain()
	if leg.AmericanOdds != 300 {
		t.Errorf("derived odds = %d, want 300", leg.AmericanOdds)
	}

	leg = wireLeg{Name: "Pinnacle", AmericanOdds: -150}.toDomain()
	if leg.ImpliedProb == nil || math.Abs(*leg.ImpliedProb-0.6) > 1e-9 {
		t.Errorf("derived prob = %v, want 0.6", leg.ImpliedProb)
	}
}
