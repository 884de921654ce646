package server

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/northstar-io/northstar/internal/coach"
	"github.com/northstar-io/northstar/internal/config"
	"github.com/northstar-io/northstar/internal/store"
	"github.com/northstar-io/northstar/internal/timer"
	"github.com/northstar-io/northstar/internal/web"
)

// VersionInfo holds build-time version metadata.
type VersionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
}

// Server is the HTTP server that serves the dashboard and REST API.
type Server struct {
	mu      sync.RWMutex
	cfg     config.Config
	store   *store.Store
	coach   *coach.Coach
	mux     *http.ServeMux
	httpSrv *http.Server
	version VersionInfo

	// active is the currently running work timer, nil when idle.
	// At most one timer runs at a time.
	active *timer.Timer

	chat []ChatMessage

	nowFunc func() time.Time

	spaFS      fs.FS
	spaHandler http.Handler

	// handlerDelay stalls timeout-wrapped handlers so tests can
	// force them past a short write timeout. Zero in production.
	handlerDelay time.Duration
}

// New creates a new Server.
func New(
	cfg config.Config, st *store.Store, c *coach.Coach,
	opts ...Option,
) *Server {
	dist, err := web.Assets()
	if err != nil {
		log.Fatalf("embedded frontend not found: %v", err)
	}

	s := &Server{
		cfg:        cfg,
		store:      st,
		coach:      c,
		mux:        http.NewServeMux(),
		nowFunc:    time.Now,
		spaFS:      dist,
		spaHandler: http.FileServerFS(dist),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

// Option configures a Server.
type Option func(*Server)

// WithVersion sets the build-time version metadata.
func WithVersion(v VersionInfo) Option {
	return func(s *Server) { s.version = v }
}

// WithClock overrides the server's clock, allowing tests to pin
// "today". Nil is ignored.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.nowFunc = now
		}
	}
}

func (s *Server) routes() {
	s.mux.Handle("POST /api/v1/timer/start", s.withTimeout(s.handleTimerStart))
	s.mux.Handle("GET /api/v1/timer", s.withTimeout(s.handleTimerStatus))
	s.mux.Handle("POST /api/v1/timer/stop", s.withTimeout(s.handleTimerStop))

	s.mux.Handle("GET /api/v1/sessions", s.withTimeout(s.handleListSessions))
	s.mux.Handle("GET /api/v1/sessions/today", s.withTimeout(s.handleTodaySessions))

	s.mux.Handle("GET /api/v1/habits", s.withTimeout(s.handleListHabits))
	s.mux.Handle("POST /api/v1/habits", s.withTimeout(s.handleAddHabit))
	s.mux.Handle("POST /api/v1/habits/{id}/toggle", s.withTimeout(s.handleToggleHabit))
	s.mux.Handle("DELETE /api/v1/habits/{id}", s.withTimeout(s.handleDeleteHabit))

	s.mux.Handle("GET /api/v1/freezer", s.withTimeout(s.handleListFrozenIdeas))
	s.mux.Handle("POST /api/v1/freezer", s.withTimeout(s.handleFreezeIdea))

	s.mux.Handle("GET /api/v1/tasks", s.withTimeout(s.handleListTasks))
	s.mux.Handle("POST /api/v1/tasks", s.withTimeout(s.handleAddTask))
	s.mux.Handle("POST /api/v1/tasks/{id}/toggle", s.withTimeout(s.handleToggleTask))
	s.mux.Handle("DELETE /api/v1/tasks/{id}", s.withTimeout(s.handleDeleteTask))

	s.mux.Handle("GET /api/v1/analytics/summary", s.withTimeout(s.handleAnalyticsSummary))
	s.mux.Handle("GET /api/v1/analytics/daily", s.withTimeout(s.handleAnalyticsDaily))
	s.mux.Handle("GET /api/v1/analytics/heatmap", s.withTimeout(s.handleAnalyticsHeatmap))
	s.mux.Handle("GET /api/v1/analytics/quarter", s.withTimeout(s.handleAnalyticsQuarter))

	// Chat: no timeout handler, generation can outlive the write
	// timeout and the coach degrades on its own.
	s.mux.HandleFunc("POST /api/v1/chat", s.handleChat)
	s.mux.Handle("GET /api/v1/chat", s.withTimeout(s.handleChatHistory))
	s.mux.HandleFunc("POST /api/v1/chat/analyze", s.handleAnalyzeToday)

	s.mux.Handle("GET /api/v1/config", s.withTimeout(s.handleGetConfig))
	s.mux.Handle("GET /api/v1/version", s.withTimeout(s.handleGetVersion))

	// SPA fallback: serve embedded frontend
	// Do not use timeout handler for static assets to avoid buffering.
	s.mux.Handle("/", http.HandlerFunc(s.handleSPA))
}

func (s *Server) handleGetVersion(
	w http.ResponseWriter, _ *http.Request,
) {
	writeJSON(w, http.StatusOK, s.version)
}

func (s *Server) handleGetConfig(
	w http.ResponseWriter, _ *http.Request,
) {
	s.mu.RLock()
	pillars := append([]string(nil), s.cfg.Pillars...)
	targets := make(map[string]float64, len(s.cfg.QuarterTargets))
	for k, v := range s.cfg.QuarterTargets {
		targets[k] = v
	}
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"pillars":         pillars,
		"quarter_targets": targets,
		"coach_enabled":   s.coach.Enabled(),
	})
}

func (s *Server) handleSPA(w http.ResponseWriter, r *http.Request) {
	// Try to serve the exact file
	path := strings.TrimPrefix(r.URL.Path, "/")
	if path == "" {
		path = "index.html"
	}

	f, err := s.spaFS.Open(path)
	if err == nil {
		f.Close()
		s.spaHandler.ServeHTTP(w, r)
		return
	}

	// SPA fallback: serve index.html for all routes
	r.URL.Path = "/"
	s.spaHandler.ServeHTTP(w, r)
}

func (s *Server) now() time.Time {
	return s.nowFunc()
}

// SetPort updates the listen port (for testing).
func (s *Server) SetPort(port int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.Port = port
}

// SetPillarTargets swaps in a freshly reloaded pillar set and
// quarter targets, used by the config file watcher.
func (s *Server) SetPillarTargets(
	pillars []string, targets map[string]float64,
) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.Pillars = append([]string(nil), pillars...)
	s.cfg.QuarterTargets = make(map[string]float64, len(targets))
	for k, v := range targets {
		s.cfg.QuarterTargets[k] = v
	}
}

// pillars returns the current canonical pillar set (thread-safe).
func (s *Server) pillars() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.cfg.Pillars...)
}

// quarterTargets returns the current target map (thread-safe).
func (s *Server) quarterTargets() map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	targets := make(map[string]float64, len(s.cfg.QuarterTargets))
	for k, v := range s.cfg.QuarterTargets {
		targets[k] = v
	}
	return targets
}

// Handler returns the http.Handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return corsMiddleware(logMiddleware(s.mux))
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	srv := &http.Server{
		Addr:        addr,
		Handler:     s.Handler(),
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 120 * time.Second,
	}
	s.mu.Lock()
	s.httpSrv = srv
	s.mu.Unlock()
	log.Printf("Starting server at http://%s", addr)
	return srv.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.RLock()
	srv := s.httpSrv
	s.mu.RUnlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// FindAvailablePort finds an available port starting from the
// given port, binding to the specified host.
func FindAvailablePort(host string, start int) int {
	for port := start; port < start+100; port++ {
		addr := net.JoinHostPort(host, strconv.Itoa(port))
		ln, err := net.Listen("tcp", addr)
		if err == nil {
			ln.Close()
			return port
		}
	}
	return start
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			w.Header().Set(
				"Access-Control-Allow-Origin", "*",
			)
			w.Header().Set(
				"Access-Control-Allow-Methods",
				"GET, POST, DELETE, OPTIONS",
			)
			w.Header().Set(
				"Access-Control-Allow-Headers",
				"Content-Type",
			)
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			log.Printf("%s %s", r.Method, r.URL.Path)
		}
		next.ServeHTTP(w, r)
	})
}
