package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"raven/application/ports"
)

const readinessTimeout = 2 * time.Second

// HealthHandler serves liveness and readiness probes
type HealthHandler struct {
	store  ports.HealthChecker
	logger *zap.Logger
}

// NewHealthHandler creates a health handler; store may be nil
func NewHealthHandler(store ports.HealthChecker, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{store: store, logger: logger}
}

// Health reports that the process is serving
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeStatus(w, http.StatusOK, "healthy")
}

// Ready reports whether the node store answers
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		if err := h.store.Ping(ctx); err != nil {
			h.logger.Warn("Readiness check failed", zap.Error(err))
			writeStatus(w, http.StatusServiceUnavailable, "unavailable")
			return
		}
	}
	writeStatus(w, http.StatusOK, "ready")
}

func writeStatus(w http.ResponseWriter, status int, value string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": value})
}
