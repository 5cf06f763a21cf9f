package engine

import (
	"reflect"
	"testing"
	"time"

	"github.com/alanyoungcy/arbwatch/internal/domain"
)

func ts(offsetMin int) *time.Time {
	t := time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC).Add(time.Duration(offsetMin) * time.Minute)
	return &t
}

func TestRankByNetDescending(t *testing.T) {
	opps := []domain.Opportunity{
		opp("low", "NBA", domain.MarketMoneyline, 1),
		opp("high", "NBA", domain.MarketMoneyline, 5),
		opp("mid", "NBA", domain.MarketMoneyline, 3),
	}
	Rank(opps, domain.SortNet, nil)
	if got := ids(opps); !reflect.DeepEqual(got, []string{"high", "mid", "low"}) {
		t.Errorf("got %v", got)
	}
}

func TestRankByTimeAscendingMissingLast(t *testing.T) {
	soon := opp("soon", "NBA", domain.MarketMoneyline, 1)
	soon.CommenceTime = ts(30)
	later := opp("later", "NBA", domain.MarketMoneyline, 9)
	later.CommenceTime = ts(120)
	missing := opp("missing", "NBA", domain.MarketMoneyline, 99)

	opps := []domain.Opportunity{missing, later, soon}
	Rank(opps, domain.SortTime, nil)
	if got := ids(opps); !reflect.DeepEqual(got, []string{"soon", "later", "missing"}) {
		t.Errorf("got %v", got)
	}
}

func TestRankStableOnTies(t *testing.T) {
	a := opp("first", "NBA", domain.MarketMoneyline, 2)
	b := opp("second", "NFL", domain.MarketMoneyline, 2)
	c := opp("third", "MLB", domain.MarketMoneyline, 2)

	opps := []domain.Opportunity{a, b, c}
	Rank(opps, domain.SortNet, nil)
	if got := ids(opps); !reflect.DeepEqual(got, []string{"first", "second", "third"}) {
		t.Errorf("equal keys must keep input order, got %v", got)
	}
}

func TestColumnOverrideWinsOverMetric(t *testing.T) {
	// Metric sort (net desc) and column sort (sport asc) disagree.
	a := opp("zebra", "Zebra", domain.MarketMoneyline, 9)
	b := opp("alpha", "Alpha", domain.MarketMoneyline, 1)

	cs := &ColumnState{}
	cs.Click(domain.ColumnSport) // descending
	cs.Click(domain.ColumnSport) // toggled ascending

	opps := []domain.Opportunity{a, b}
	Rank(opps, domain.SortNet, cs)
	if got := ids(opps); !reflect.DeepEqual(got, []string{"alpha", "zebra"}) {
		t.Errorf("column sort must override metric sort, got %v", got)
	}
}

func TestColumnStateToggleAndReset(t *testing.T) {
	cs := &ColumnState{}

	if dir := cs.Click(domain.ColumnNet); dir != domain.SortDescending {
		t.Fatalf("first click should select descending, got %v", dir)
	}
	if dir := cs.Click(domain.ColumnNet); dir != domain.SortAscending {
		t.Fatalf("second click should toggle ascending, got %v", dir)
	}
	// Selecting a different column resets to descending.
	if dir := cs.Click(domain.ColumnSport); dir != domain.SortDescending {
		t.Fatalf("new column should reset to descending, got %v", dir)
	}

	cs.Clear()
	if _, _, active := cs.Active(); active {
		t.Fatal("Clear should deactivate the override")
	}
}

func TestRankNumericColumnDescending(t *testing.T) {
	a := opp("a", "NBA", domain.MarketMoneyline, 1)
	a.MatchConfidence = 0.9
	b := opp("b", "NBA", domain.MarketMoneyline, 9)
	b.MatchConfidence = 0.5

	cs := &ColumnState{}
	cs.Click(domain.ColumnConfidence)

	opps := []domain.Opportunity{b, a}
	Rank(opps, domain.SortNet, cs)
	if got := ids(opps); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("got %v", got)
	}
}
