package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/sakif/my-applications/internal/logger"
)

// Pinger reports whether the database answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db      Pinger
	service string
}

func NewHealthHandler(db Pinger, service string) *HealthHandler {
	return &HealthHandler{db: db, service: service}
}

// HandleRoot → GET /
func (h *HealthHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok", "service": h.service})
}

// HandleHealth → GET /health
//
// Load balancers poll this; it answers 503 when the database is unreachable.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		logger.FromRequest(r).Warn().Err(err).Msg("health check: database ping failed")
		writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
