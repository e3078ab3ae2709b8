package handlers

import (
	"context"
	"net/http"
	"time"
)

// Pinger reports whether the backing database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves GET /healthz.
type HealthHandler struct {
	DB Pinger
}

func (h HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.DB != nil {
		if err := h.DB.Ping(ctx); err != nil {
			respondError(ctx, w, &apiError{status: http.StatusServiceUnavailable, message: "database unreachable"})
			return
		}
	}

	respond(ctx, w, http.StatusOK, map[string]string{"status": "ok"}, "healthy")
}
