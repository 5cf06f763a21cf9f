// Package handler contains the HTTP handlers for the arbwatch dashboard API.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/alanyoungcy/arbwatch/internal/domain"
	"github.com/alanyoungcy/arbwatch/internal/scheduler"
)

// Monitor is the slice of the scheduler the opportunity handlers require.
type Monitor interface {
	Snapshot() scheduler.Snapshot
	Status() scheduler.Status
	Trigger(ctx context.Context) error
	SetCriteria(ctx context.Context, c domain.FilterCriteria)
	SetMetric(ctx context.Context, m domain.SortMetric)
	ClickColumn(ctx context.Context, col domain.Column) domain.SortDirection
	SetBankroll(ctx context.Context, bankroll float64)
}

// OpportunityHandler serves the opportunity list, filter, sort, and manual
// refresh endpoints.
type OpportunityHandler struct {
	monitor Monitor
	logger  *slog.Logger
}

// NewOpportunityHandler creates an OpportunityHandler.
func NewOpportunityHandler(monitor Monitor, logger *slog.Logger) *OpportunityHandler {
	return &OpportunityHandler{monitor: monitor, logger: logHandler(logger, "opportunities")}
}

// List returns the current display snapshot: filtered and ranked rows with
// stake splits, plus scan metadata.
// GET /api/opportunities
func (h *OpportunityHandler) List(w http.ResponseWriter, r *http.Request) {
	snap := h.monitor.Snapshot()
	if snap.Rows == nil {
		snap.Rows = []scheduler.Row{}
	}
	writeJSON(w, http.StatusOK, snap)
}

// Refresh starts a manual refresh cycle. A refresh already in flight is not
// an error; the response reports whether a new cycle was started.
// POST /api/refresh
func (h *OpportunityHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	err := h.monitor.Trigger(r.Context())
	if err != nil && !errors.Is(err, domain.ErrScanInFlight) {
		h.logger.ErrorContext(r.Context(), "manual refresh failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to start refresh")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"started": err == nil,
		"state":   h.monitor.Status().State,
	})
}

// filtersRequest mirrors domain.FilterCriteria on the wire.
type filtersRequest struct {
	Sports      []string `json:"sports"`
	Platforms   []string `json:"platforms"`
	MarketTypes []string `json:"market_types"`
	IncludeLive *bool    `json:"include_live"`
	MinNetPct   *float64 `json:"min_net_pct"`
}

// SetFilters replaces the filter criteria and returns the re-derived
// snapshot. Omitted fields reset to open.
// PUT /api/filters
func (h *OpportunityHandler) SetFilters(w http.ResponseWriter, r *http.Request) {
	var req filtersRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid filter body")
		return
	}

	c := domain.FilterCriteria{
		Sports:      req.Sports,
		Platforms:   req.Platforms,
		MarketTypes: req.MarketTypes,
		IncludeLive: true,
	}
	if req.IncludeLive != nil {
		c.IncludeLive = *req.IncludeLive
	}
	if req.MinNetPct != nil {
		c.MinNetPct = *req.MinNetPct
	}

	h.monitor.SetCriteria(r.Context(), c)
	writeJSON(w, http.StatusOK, h.monitor.Snapshot())
}

// sortRequest selects either a ranking metric or a column header click.
type sortRequest struct {
	Metric string `json:"metric"`
	Column string `json:"column"`
}

// SetSort applies a sort change. A metric switch clears any column override;
// a column click sorts descending first and flips on repeat.
// PUT /api/sort
func (h *OpportunityHandler) SetSort(w http.ResponseWriter, r *http.Request) {
	var req sortRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid sort body")
		return
	}

	switch {
	case req.Column != "":
		dir := h.monitor.ClickColumn(r.Context(), domain.Column(req.Column))
		writeJSON(w, http.StatusOK, map[string]any{
			"column":    req.Column,
			"direction": directionName(dir),
		})
	case req.Metric != "":
		h.monitor.SetMetric(r.Context(), domain.SortMetric(req.Metric))
		writeJSON(w, http.StatusOK, map[string]any{"metric": req.Metric})
	default:
		writeError(w, http.StatusBadRequest, "metric or column required")
	}
}

// SetBankroll changes the bankroll used for stake splits.
// PUT /api/bankroll
func (h *OpportunityHandler) SetBankroll(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Bankroll float64 `json:"bankroll"`
	}
	if err := decodeBody(r, &req); err != nil || req.Bankroll <= 0 {
		writeError(w, http.StatusBadRequest, "bankroll must be a positive number")
		return
	}
	h.monitor.SetBankroll(r.Context(), req.Bankroll)
	writeJSON(w, http.StatusOK, map[string]any{"bankroll": req.Bankroll})
}

func directionName(dir domain.SortDirection) string {
	if dir == domain.SortAscending {
		return "asc"
	}
	return "desc"
}

