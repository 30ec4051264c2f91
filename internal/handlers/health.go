package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/utils"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	responder
	db Pinger
}

func NewHealthHandler(db Pinger, logger *utils.Logger) *HealthHandler {
	return &HealthHandler{
		responder: responder{logger: logger},
		db:        db,
	}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Error("Health check failed", "error", err)
		h.respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "database": "unreachable"})
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
