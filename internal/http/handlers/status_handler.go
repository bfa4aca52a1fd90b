package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"
)

const apiVersion = "1.0.0"

// StatusHandler serves the welcome and status routes. The database
// handle may be nil when the service starts without store
// configuration.
type StatusHandler struct {
	pool        *sql.DB
	environment string
}

// NewStatusHandler builds StatusHandler.
func NewStatusHandler(pool *sql.DB, environment string) *StatusHandler {
	return &StatusHandler{pool: pool, environment: environment}
}

// Root handles GET /.
func (h *StatusHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message":     "Smart Grid API is running!",
		"version":     apiVersion,
		"environment": h.environment,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Status handles GET /api/status, reporting live database connectivity.
func (h *StatusHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "online",
		"database":    h.databaseStatus(r.Context()),
		"version":     apiVersion,
		"environment": h.environment,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *StatusHandler) databaseStatus(ctx context.Context) string {
	if h.pool == nil {
		return "not configured"
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := h.pool.PingContext(pingCtx); err != nil {
		return "disconnected"
	}
	return "connected"
}
