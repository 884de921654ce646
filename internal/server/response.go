package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
)

// apiError is the JSON shape of every error response.
type apiError struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encoding %T response: %v", v, err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, apiError{Error: msg})
}

// handleContextError reports whether err came from a canceled or
// expired request context. Callers return without writing: the
// timeout middleware already answers those requests with its
// buffered 503, and a second write would race against it.
func handleContextError(_ http.ResponseWriter, err error) bool {
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
