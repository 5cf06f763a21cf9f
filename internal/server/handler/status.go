package handler

import (
	"net/http"

	"github.com/alanyoungcy/arbwatch/internal/domain"
)

// StatusHandler serves the scheduler and source status for the dashboard
// header.
type StatusHandler struct {
	monitor Monitor
	mode    string
}

// NewStatusHandler creates a StatusHandler for the given run mode.
func NewStatusHandler(monitor Monitor, mode string) *StatusHandler {
	return &StatusHandler{monitor: monitor, mode: mode}
}

// GetStatus responds with the scheduler state machine, the cadence band, the
// countdown, and per-source health with mapped severities.
// GET /api/status
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	st := h.monitor.Status()
	snap := h.monitor.Snapshot()

	sources := make(map[string]map[string]string, len(snap.Meta.Sources))
	for name, status := range snap.Meta.Sources {
		sources[name] = map[string]string{
			"status":   string(status),
			"severity": string(status.Severity()),
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"mode":             h.mode,
		"scheduler":        st,
		"sources":          sources,
		"overall_severity": string(OverallSeverity(snap.Meta.Sources)),
		"is_demo":          snap.Meta.IsDemo,
		"arb_count":        snap.Meta.ArbCount,
		"ev_count":         snap.Meta.EVCount,
		"total_count":      snap.TotalCount,
		"refreshed_at":     snap.RefreshedAt,
		"cycle_id":         snap.CycleID,
	})
}

// severityRank keeps the worst severity when aggregating.
var severityRank = map[domain.Severity]int{
	domain.SeverityOK:    0,
	domain.SeverityWarn:  1,
	domain.SeverityError: 2,
}

// OverallSeverity reduces per-source severities to the worst one.
func OverallSeverity(sources map[string]domain.SourceStatus) domain.Severity {
	worst := domain.SeverityOK
	for _, status := range sources {
		if severityRank[status.Severity()] > severityRank[worst] {
			worst = status.Severity()
		}
	}
	return worst
}
