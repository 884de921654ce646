package server

import (
	"encoding/json"
	"net/http"
	"time"
)

// timeoutBody is the canned payload http.TimeoutHandler serves when a
// handler overruns the write timeout.
var timeoutBody = func() string {
	b, _ := json.Marshal(apiError{Error: "request timed out"})
	return string(b)
}()

// withTimeout bounds a handler by the configured write timeout.
// http.TimeoutHandler emits the 503 without headers, so the response
// writer is wrapped to stamp the JSON Content-Type onto that status.
func (s *Server) withTimeout(h http.HandlerFunc) http.Handler {
	inner := h
	if s.handlerDelay > 0 {
		// Test hook: stall the handler so short timeouts trip
		// deterministically.
		delay := s.handlerDelay
		inner = func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(delay)
			h(w, r)
		}
	}
	bounded := http.TimeoutHandler(inner, s.cfg.WriteTimeout, timeoutBody)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bounded.ServeHTTP(&timeoutWriter{ResponseWriter: w}, r)
	})
}

// timeoutWriter forces application/json on 503 responses; all other
// statuses pass through untouched.
type timeoutWriter struct {
	http.ResponseWriter
	wroteHeader bool
}

func (w *timeoutWriter) WriteHeader(code int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true
	if code == http.StatusServiceUnavailable &&
		w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *timeoutWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}
