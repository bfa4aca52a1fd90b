package handlers

import (
	"net/http"
	"time"
)

// NotFound is the catch-all for unmatched routes. Wrong-method requests
// go through it too, so every miss gets the same JSON body.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]string{
		"message":   "Route not found",
		"path":      r.URL.Path,
		"method":    r.Method,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
