package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	stdsync "sync"
	"testing"
	"time"

	"github.com/northstar-io/northstar/internal/coach"
	"github.com/northstar-io/northstar/internal/config"
	"github.com/northstar-io/northstar/internal/server"
	"github.com/northstar-io/northstar/internal/store"
)

// Reference times for test data. Day1 is a Monday.
var (
	tsDay1 = time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	tsDay2 = time.Date(2026, 6, 2, 10, 0, 0, 0, time.UTC)
)

// fakeClock is a settable clock shared by the server and the store,
// so "today" and the stored save date always agree.
type fakeClock struct {
	mu stdsync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// testEnv sets up a server with a temporary database and a pinned
// clock starting at tsDay2.
type testEnv struct {
	srv     *server.Server
	handler http.Handler
	store   *store.Store
	clock   *fakeClock
}

// setupOption customizes the config used by setup.
type setupOption func(*config.Config)

func withQuarterTargets(targets map[string]float64) setupOption {
	return func(c *config.Config) { c.QuarterTargets = targets }
}

func setup(t *testing.T, opts ...setupOption) *testEnv {
	return setupWithCoach(t, coach.New(""), opts...)
}

func setupWithCoach(
	t *testing.T, c *coach.Coach, opts ...setupOption,
) *testEnv {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")

	st, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	clock := &fakeClock{t: tsDay2}
	st.SetClock(clock.Now)

	cfg := config.Config{
		Host:         "127.0.0.1",
		Port:         0,
		DataDir:      dir,
		DBPath:       dbPath,
		Pillars:      append([]string(nil), config.DefaultPillars...),
		WriteTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	srv := server.New(cfg, st, c, server.WithClock(clock.Now))
	return &testEnv{
		srv:     srv,
		handler: srv.Handler(),
		store:   st,
		clock:   clock,
	}
}

// do performs an HTTP request against the server handler.
func (te *testEnv) do(
	t *testing.T, method, path string, body any,
) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshaling body: %v", err)
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	te.handler.ServeHTTP(rr, req)
	return rr
}

// mustStatus fails the test unless the recorder holds the wanted
// status code.
func mustStatus(
	t *testing.T, rr *httptest.ResponseRecorder, want int,
) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("status = %d, want %d; body: %s",
			rr.Code, want, rr.Body.String())
	}
}

func decodeJSON(
	t *testing.T, rr *httptest.ResponseRecorder, v any,
) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("decoding response %q: %v", rr.Body.String(), err)
	}
}

// runSession starts and stops a timer, advancing the clock by the
// given duration, so a completed session lands in the store.
func (te *testEnv) runSession(
	t *testing.T, task, pillar string, d time.Duration,
) {
	t.Helper()
	rr := te.do(t, "POST", "/api/v1/timer/start",
		map[string]string{"task": task, "pillar": pillar})
	mustStatus(t, rr, http.StatusCreated)

	te.clock.Advance(d)

	rr = te.do(t, "POST", "/api/v1/timer/stop", nil)
	mustStatus(t, rr, http.StatusOK)
}

func TestVersionEndpoint(t *testing.T) {
	te := setup(t)
	rr := te.do(t, "GET", "/api/v1/version", nil)
	mustStatus(t, rr, http.StatusOK)

	var v server.VersionInfo
	decodeJSON(t, rr, &v)
}

func TestConfigEndpoint(t *testing.T) {
	te := setup(t, withQuarterTargets(map[string]float64{"Growth": 40}))
	rr := te.do(t, "GET", "/api/v1/config", nil)
	mustStatus(t, rr, http.StatusOK)

	var got struct {
		Pillars        []string           `json:"pillars"`
		QuarterTargets map[string]float64 `json:"quarter_targets"`
		CoachEnabled   bool               `json:"coach_enabled"`
	}
	decodeJSON(t, rr, &got)

	if len(got.Pillars) != len(config.DefaultPillars) {
		t.Errorf("pillars = %v, want %v", got.Pillars, config.DefaultPillars)
	}
	if got.QuarterTargets["Growth"] != 40 {
		t.Errorf("Growth target = %v, want 40", got.QuarterTargets["Growth"])
	}
	if got.CoachEnabled {
		t.Error("coach should be disabled without an API key")
	}
}

func TestSetPillarTargetsReflectedInConfig(t *testing.T) {
	te := setup(t)
	te.srv.SetPillarTargets(
		[]string{"Deep Work", "Admin"},
		map[string]float64{"Deep Work": 100},
	)

	rr := te.do(t, "GET", "/api/v1/config", nil)
	mustStatus(t, rr, http.StatusOK)

	var got struct {
		Pillars        []string           `json:"pillars"`
		QuarterTargets map[string]float64 `json:"quarter_targets"`
	}
	decodeJSON(t, rr, &got)

	if len(got.Pillars) != 2 || got.Pillars[0] != "Deep Work" {
		t.Errorf("pillars = %v, want [Deep Work Admin]", got.Pillars)
	}
	if got.QuarterTargets["Deep Work"] != 100 {
		t.Errorf("Deep Work target = %v, want 100",
			got.QuarterTargets["Deep Work"])
	}
}

func TestSPAServesIndex(t *testing.T) {
	te := setup(t)

	for _, path := range []string{"/", "/some/client/route"} {
		rr := te.do(t, "GET", path, nil)
		mustStatus(t, rr, http.StatusOK)
		if !strings.Contains(rr.Body.String(), "NORTHSTAR") {
			t.Errorf("GET %s: index.html not served", path)
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	te := setup(t)
	rr := te.do(t, "OPTIONS", "/api/v1/timer", nil)
	mustStatus(t, rr, http.StatusNoContent)
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin = %q, want *", got)
	}
}
