package engine

import (
	"sort"
	"strings"
	"sync"

	"github.com/alanyoungcy/arbwatch/internal/domain"
)

// ColumnState remembers the user's column-click override. When a column is
// active it wins over the named metric sort; clicking the same column toggles
// the direction, clicking a different one selects it descending.
type ColumnState struct {
	mu        sync.Mutex
	column    domain.Column
	direction domain.SortDirection
	active    bool
}

// Click registers a column header click and returns the resulting direction.
func (cs *ColumnState) Click(col domain.Column) domain.SortDirection {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if cs.active && cs.column == col {
		if cs.direction == domain.SortDescending {
			cs.direction = domain.SortAscending
		} else {
			cs.direction = domain.SortDescending
		}
	} else {
		cs.column = col
		cs.direction = domain.SortDescending
		cs.active = true
	}
	return cs.direction
}

// Clear deactivates the column override, returning control to the metric sort.
func (cs *ColumnState) Clear() {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.active = false
}

// Active returns the current override, if any.
func (cs *ColumnState) Active() (domain.Column, domain.SortDirection, bool) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.column, cs.direction, cs.active
}

// Rank orders opps in place: first by the named metric, then, if a column
// override is active, re-sorted wholesale by that column — column sort always
// wins. Both stages use a stable sort so equal keys keep their relative input
// order.
func Rank(opps []domain.Opportunity, metric domain.SortMetric, cs *ColumnState) {
	sortByMetric(opps, metric)

	if cs == nil {
		return
	}
	if col, dir, ok := cs.Active(); ok {
		sortByColumn(opps, col, dir)
	}
}

// sortByMetric sorts descending on the metric, except time which sorts
// ascending (soonest first) with missing timestamps last.
func sortByMetric(opps []domain.Opportunity, metric domain.SortMetric) {
	sort.SliceStable(opps, func(i, j int) bool {
		a, b := opps[i], opps[j]
		switch metric {
		case domain.SortGross:
			return a.GrossArbPct > b.GrossArbPct
		case domain.SortTime:
			return commenceBefore(a, b)
		case domain.SortLiquidity:
			return a.Liquidity > b.Liquidity
		case domain.SortConfidence:
			return a.MatchConfidence > b.MatchConfidence
		default: // SortNet
			return a.NetArbPct > b.NetArbPct
		}
	})
}

// commenceBefore orders by commence time ascending; a missing timestamp is
// treated as infinitely far in the future.
func commenceBefore(a, b domain.Opportunity) bool {
	switch {
	case a.CommenceTime == nil:
		return false
	case b.CommenceTime == nil:
		return true
	default:
		return a.CommenceTime.Before(*b.CommenceTime)
	}
}

func sortByColumn(opps []domain.Opportunity, col domain.Column, dir domain.SortDirection) {
	less := columnLess(col)
	sort.SliceStable(opps, func(i, j int) bool {
		if dir == domain.SortAscending {
			return less(opps[i], opps[j])
		}
		return less(opps[j], opps[i])
	})
}

// columnLess returns the ascending comparator for a column. String columns
// compare by collated string order; numeric ones by value.
func columnLess(col domain.Column) func(a, b domain.Opportunity) bool {
	switch col {
	case domain.ColumnSport:
		return func(a, b domain.Opportunity) bool { return strings.Compare(a.Sport, b.Sport) < 0 }
	case domain.ColumnEvent:
		return func(a, b domain.Opportunity) bool { return strings.Compare(a.Event, b.Event) < 0 }
	case domain.ColumnMarket:
		return func(a, b domain.Opportunity) bool {
			return strings.Compare(string(a.MarketType), string(b.MarketType)) < 0
		}
	case domain.ColumnPlatformA:
		return func(a, b domain.Opportunity) bool {
			return strings.Compare(a.LegA.PlatformName, b.LegA.PlatformName) < 0
		}
	case domain.ColumnPlatformB:
		return func(a, b domain.Opportunity) bool {
			return strings.Compare(a.LegB.PlatformName, b.LegB.PlatformName) < 0
		}
	case domain.ColumnGross:
		return func(a, b domain.Opportunity) bool { return a.GrossArbPct < b.GrossArbPct }
	case domain.ColumnConfidence:
		return func(a, b domain.Opportunity) bool { return a.MatchConfidence < b.MatchConfidence }
	case domain.ColumnTime:
		return func(a, b domain.Opportunity) bool { return commenceBefore(a, b) }
	case domain.ColumnLiquidity:
		return func(a, b domain.Opportunity) bool { return a.Liquidity < b.Liquidity }
	default: // ColumnNet
		return func(a, b domain.Opportunity) bool { return a.NetArbPct < b.NetArbPct }
	}
}
