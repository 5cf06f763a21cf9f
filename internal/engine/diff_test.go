package engine

import (
	"testing"

	"github.com/alanyoungcy/arbwatch/internal/domain"
)

func TestChangeDetectorFirstRefreshNeverAlerts(t *testing.T) {
	d := NewChangeDetector()
	opps := []domain.Opportunity{
		opp("a", "NBA", domain.MarketMoneyline, 10),
		opp("b", "NBA", domain.MarketMoneyline, 10),
	}
	alerts := d.Apply(opps, 2.0)
	if len(alerts) != 0 {
		t.Fatalf("first refresh alerted %d times", len(alerts))
	}
	// Everything is still annotated new on the first refresh.
	for _, o := range opps {
		if !o.IsNew {
			t.Errorf("opportunity %s should be marked new", o.ID)
		}
	}
}

func TestChangeDetectorAlertsOncePerNewID(t *testing.T) {
	d := NewChangeDetector()
	d.Apply([]domain.Opportunity{opp("a", "NBA", domain.MarketMoneyline, 10)}, 2.0)

	second := []domain.Opportunity{
		opp("a", "NBA", domain.MarketMoneyline, 10),
		opp("b", "NBA", domain.MarketMoneyline, 5),
		opp("c", "NBA", domain.MarketMoneyline, 1), // below threshold
	}
	alerts := d.Apply(second, 2.0)
	if len(alerts) != 1 || alerts[0].ID != "b" {
		t.Fatalf("want single alert for b, got %v", ids(alerts))
	}
	if second[0].IsNew {
		t.Error("previously seen id annotated as new")
	}
	if !second[2].IsNew {
		t.Error("below-threshold new id must still be annotated new")
	}

	// Same ids again: no further alerts for b.
	alerts = d.Apply(second, 2.0)
	if len(alerts) != 0 {
		t.Fatalf("repeat refresh re-alerted: %v", ids(alerts))
	}
}

func TestChangeDetectorThresholdInclusive(t *testing.T) {
	d := NewChangeDetector()
	d.Apply([]domain.Opportunity{opp("seed", "NBA", domain.MarketMoneyline, 0)}, 2.0)

	alerts := d.Apply([]domain.Opportunity{opp("exact", "NBA", domain.MarketMoneyline, 2.0)}, 2.0)
	if len(alerts) != 1 {
		t.Fatalf("threshold must be inclusive, got %d alerts", len(alerts))
	}
}

func TestChangeDetectorReplacesSetWholesale(t *testing.T) {
	d := NewChangeDetector()
	d.Apply([]domain.Opportunity{
		opp("a", "NBA", domain.MarketMoneyline, 5),
		opp("b", "NBA", domain.MarketMoneyline, 5),
	}, 2.0)
	// b drops out for one cycle.
	d.Apply([]domain.Opportunity{opp("a", "NBA", domain.MarketMoneyline, 5)}, 2.0)

	// b returning counts as new again: no accumulation across cycles.
	alerts := d.Apply([]domain.Opportunity{
		opp("a", "NBA", domain.MarketMoneyline, 5),
		opp("b", "NBA", domain.MarketMoneyline, 5),
	}, 2.0)
	if len(alerts) != 1 || alerts[0].ID != "b" {
		t.Fatalf("returning id should alert again, got %v", ids(alerts))
	}
}
