package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/alanyoungcy/arbwatch/internal/domain"
)

// AlertsHandler serves recent alert history from the signal bus stream.
type AlertsHandler struct {
	bus    domain.SignalBus // nil when Redis is disabled
	logger *slog.Logger
}

// NewAlertsHandler creates an AlertsHandler. bus may be nil.
func NewAlertsHandler(bus domain.SignalBus, logger *slog.Logger) *AlertsHandler {
	return &AlertsHandler{bus: bus, logger: logHandler(logger, "alerts")}
}

// ListRecent returns the most recent alerts recorded on the bus stream.
// GET /api/alerts?limit=50
func (h *AlertsHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	if h.bus == nil {
		writeError(w, http.StatusNotImplemented, "alert history requires redis")
		return
	}

	limit := queryLimit(r, 50, 500)
	msgs, err := h.bus.StreamRead(r.Context(), domain.AlertStream, "0", limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "alert stream read failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to read alert history")
		return
	}

	alerts := make([]json.RawMessage, 0, len(msgs))
	for _, m := range msgs {
		alerts = append(alerts, json.RawMessage(m.Payload))
	}
	writeJSON(w, http.StatusOK, map[string]any{"alerts": alerts})
}
