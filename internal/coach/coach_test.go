package coach

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/northstar-io/northstar/internal/analytics"
	"github.com/northstar-io/northstar/internal/store"
)

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }

func TestAskWithoutKeyReturnsSentinel(t *testing.T) {
	c := New("")
	got := c.Ask(context.Background(), "should I start a new project?", Stats{})
	assert.Equal(t, MsgKeyMissing, got)
	assert.False(t, c.Enabled())
}

func TestAskDegradesOnError(t *testing.T) {
	c := New("", WithGenerateFunc(
		func(ctx context.Context, prompt string) (string, error) {
			return "", errors.New("quota exceeded")
		},
	))
	got := c.Ask(context.Background(), "how am I doing?", Stats{})
	assert.Equal(t, MsgUnavailable, got)
}

func TestAskDegradesOnEmptyReply(t *testing.T) {
	c := New("", WithGenerateFunc(
		func(ctx context.Context, prompt string) (string, error) {
			return "   \n", nil
		},
	))
	got := c.Ask(context.Background(), "hello", Stats{})
	assert.Equal(t, MsgUnavailable, got)
}

func TestAskForwardsPromptAndReply(t *testing.T) {
	var captured string
	c := New("", WithGenerateFunc(
		func(ctx context.Context, prompt string) (string, error) {
			captured = prompt
			return "Ship the thing.", nil
		},
	))

	stats := Stats{
		TodayTotal:  "2h 15m",
		Metrics:     analytics.Metrics{Daily: 2.3, Weekly: 10.0, Monthly: 41.5},
		PillarHours: map[string]float64{"Growth": 8.5, "Cleanup": 1.5},
		ActiveTasks: 4,
	}
	got := c.Ask(context.Background(), "can I start something new?", stats)

	assert.Equal(t, "Ship the thing.", got)
	assert.Contains(t, captured, "productivity coach")
	assert.Contains(t, captured, "2h 15m")
	assert.Contains(t, captured, "Active tasks: 4")
	assert.Contains(t, captured, "Growth: 8.5")
	assert.Contains(t, captured, "can I start something new?")
}

func TestBuildAnalyzePrompt(t *testing.T) {
	sessions := []store.WorkSession{
		{Task: "write report", Pillar: strPtr("Growth"), DurationMin: f64Ptr(45)},
		{Task: "odd row"}, // missing pillar and duration
	}
	prompt := BuildAnalyzePrompt(sessions)
	assert.Contains(t, prompt, "write report (Growth, 45 min)")
	assert.Contains(t, prompt, "odd row (General, 0 min)")

	t.Run("Empty", func(t *testing.T) {
		assert.Contains(t, BuildAnalyzePrompt(nil), "(none logged yet)")
	})

	t.Run("Truncates", func(t *testing.T) {
		many := make([]store.WorkSession, maxPromptSessions+5)
		for i := range many {
			many[i] = store.WorkSession{Task: "x"}
		}
		p := BuildAnalyzePrompt(many)
		assert.Equal(t, maxPromptSessions, strings.Count(p, "- x ("))
		assert.Contains(t, p, "- ...")
	})
}

func TestGeminiClientGenerate(t *testing.T) {
	t.Run("OK", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, "secret", r.Header.Get("x-goog-api-key"))
				w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"hello there"}]}}]}`))
			},
		))
		defer srv.Close()

		c := NewGeminiClient("secret")
		c.baseURL = srv.URL

		got, err := c.Generate(context.Background(), "hi")
		require.NoError(t, err)
		assert.Equal(t, "hello there", got)
	})

	t.Run("APIError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error":{"message":"quota exhausted"}}`))
			},
		))
		defer srv.Close()

		c := NewGeminiClient("secret")
		c.baseURL = srv.URL

		_, err := c.Generate(context.Background(), "hi")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "quota exhausted")
	})

	t.Run("NoCandidates", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"candidates":[]}`))
			},
		))
		defer srv.Close()

		c := NewGeminiClient("secret")
		c.baseURL = srv.URL

		_, err := c.Generate(context.Background(), "hi")
		require.Error(t, err)
	})

	t.Run("SingleAttempt", func(t *testing.T) {
		var calls int
		srv := httptest.NewServer(http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.WriteHeader(http.StatusInternalServerError)
			},
		))
		defer srv.Close()

		c := NewGeminiClient("secret")
		c.baseURL = srv.URL

		_, err := c.Generate(context.Background(), "hi")
		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("MissingKey", func(t *testing.T) {
		c := NewGeminiClient("")
		_, err := c.Generate(context.Background(), "hi")
		require.Error(t, err)
	})
}
