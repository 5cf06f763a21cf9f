package handler

import (
	"context"
	"log/slog"
	"net/http"
)

// ConfigStore proxies the backend's key/value configuration blob.
type ConfigStore interface {
	GetConfig(ctx context.Context) (map[string]any, error)
	SetConfig(ctx context.Context, values map[string]any) error
}

// ConfigHandler serves the backend configuration endpoints.
type ConfigHandler struct {
	store  ConfigStore
	logger *slog.Logger
}

// NewConfigHandler creates a ConfigHandler.
func NewConfigHandler(store ConfigStore, logger *slog.Logger) *ConfigHandler {
	return &ConfigHandler{store: store, logger: logHandler(logger, "config")}
}

// GetConfig returns the backend's configuration blob.
// GET /api/config
func (h *ConfigHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.store.GetConfig(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "get config failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadGateway, "backend config unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"config": cfg})
}

// UpdateConfig writes key/value pairs to the backend configuration blob.
// PUT /api/config
func (h *ConfigHandler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var values map[string]any
	if err := decodeBody(r, &values); err != nil || len(values) == 0 {
		writeError(w, http.StatusBadRequest, "body must be a non-empty JSON object")
		return
	}

	if err := h.store.SetConfig(r.Context(), values); err != nil {
		h.logger.ErrorContext(r.Context(), "update config failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadGateway, "backend config update failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"updated": true})
}
