package engine

import "github.com/alanyoungcy/arbwatch/internal/domain"

// ChangeDetector diffs each refresh's opportunity id set against the previous
// one. It is owned by the scheduler's refresh cycle and is not safe for
// concurrent use.
type ChangeDetector struct {
	prev map[string]struct{}
}

// NewChangeDetector starts with an empty previous set, so the first refresh
// of a session marks everything seen without alerting.
func NewChangeDetector() *ChangeDetector {
	return &ChangeDetector{prev: make(map[string]struct{})}
}

// Apply annotates each opportunity's IsNew flag against the previous refresh
// and returns the alert candidates: new opportunities whose net percentage
// meets or exceeds notifyAbovePct. No candidates are returned while the
// previous set is empty — the first refresh never alerts. Afterwards the
// previous set is replaced wholesale by the current ids.
func (d *ChangeDetector) Apply(opps []domain.Opportunity, notifyAbovePct float64) []domain.Opportunity {
	firstRefresh := len(d.prev) == 0

	var alerts []domain.Opportunity
	curr := make(map[string]struct{}, len(opps))
	for i := range opps {
		id := opps[i].ID
		curr[id] = struct{}{}

		_, seen := d.prev[id]
		opps[i].IsNew = !seen
		if !seen && !firstRefresh && opps[i].NetArbPct >= notifyAbovePct {
			alerts = append(alerts, opps[i])
		}
	}

	d.prev = curr
	return alerts
}

// SeenCount returns the size of the previous id set.
func (d *ChangeDetector) SeenCount() int {
	return len(d.prev)
}
