package handlers

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"
)

// writeJSON encodes v as the response body. Encoding failures at this
// point cannot be reported to the client anymore, so they are only
// logged by the caller's middleware via the 200 already on the wire.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError sends the standard error body {"message": ...}.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// writeServerError sends a 500 with the given public message. In
// development mode the underlying error text and a stack trace are
// included in the body; in production they only reach the log.
func writeServerError(w http.ResponseWriter, logger *zap.Logger, development bool, message string, err error) {
	logger.Error(message, zap.Error(err))
	if development && err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"message": message,
			"error":   err.Error(),
			"stack":   string(debug.Stack()),
		})
		return
	}
	writeError(w, http.StatusInternalServerError, message)
}

// decodeBody parses a JSON request body into a generic mapping.
func decodeBody(r *http.Request) (map[string]any, error) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, err
	}
	return body, nil
}

// decodeInto parses a JSON request body into a typed struct.
func decodeInto(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
