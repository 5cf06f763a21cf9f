package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/alanyoungcy/arbwatch/internal/arbitrage"
	"github.com/alanyoungcy/arbwatch/internal/platform/scanapi"
)

// DetailClient is the slice of the backend client the detail handler needs.
type DetailClient interface {
	Detail(ctx context.Context, p scanapi.DetailParams) (scanapi.Detail, error)
}

// DetailHandler serves the deep-dive endpoint: the backend's order book
// refinement plus a locally computed stake plan with bankroll scenarios.
type DetailHandler struct {
	client DetailClient
	logger *slog.Logger
}

// NewDetailHandler creates a DetailHandler.
func NewDetailHandler(client DetailClient, logger *slog.Logger) *DetailHandler {
	return &DetailHandler{client: client, logger: logHandler(logger, "detail")}
}

// GetDetail returns the stake plan for one opportunity pair. The plan is
// always computed locally from the probabilities and fees in the query; the
// backend refinement is attached when the backend is reachable.
// GET /api/detail?prob_a=0.45&prob_b=0.50&fee_a=0.02&fee_b=0&bankroll=1000
func (h *DetailHandler) GetDetail(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := scanapi.DetailParams{
		PlatformA: q.Get("platform_a"),
		PlatformB: q.Get("platform_b"),
		MarketIDA: q.Get("market_id_a"),
		MarketIDB: q.Get("market_id_b"),
		ProbA:     queryFloat(r, "prob_a", 0),
		ProbB:     queryFloat(r, "prob_b", 0),
		FeeA:      queryFloat(r, "fee_a", 0),
		FeeB:      queryFloat(r, "fee_b", 0),
		Bankroll:  queryFloat(r, "bankroll", 1000),
	}

	plan, err := arbitrage.Plan(params.ProbA, params.ProbB, params.FeeA, params.FeeB, params.Bankroll)
	if err != nil {
		writeError(w, http.StatusBadRequest, "prob_a and prob_b must be probabilities in (0, 1)")
		return
	}

	resp := map[string]any{
		"plan": plan,
	}

	if h.client != nil {
		detail, err := h.client.Detail(r.Context(), params)
		if err != nil {
			// The local plan is still useful without the refinement.
			h.logger.WarnContext(r.Context(), "backend detail unavailable",
				slog.String("error", err.Error()),
			)
		} else {
			resp["backend"] = detail
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
