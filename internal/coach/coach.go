// Package coach wraps the hosted text-generation service behind a
// never-crash policy: the coach is optional, so every failure mode
// degrades to a short sentinel string instead of an error. Nothing
// here is retried; each user interaction costs at most one call.
package coach

import (
	"context"
	"log"
	"strings"

	"github.com/northstar-io/northstar/internal/store"
)

// Sentinel replies for the two degraded states.
const (
	MsgKeyMissing  = "AI key missing"
	MsgUnavailable = "AI sleeping..."
)

// Coach formats prompts and forwards them to the generation backend.
type Coach struct {
	generate GenerateFunc
	enabled  bool
}

// Option configures a Coach.
type Option func(*Coach)

// WithGenerateFunc overrides the generation function, allowing tests
// to substitute a stub. Nil is ignored.
func WithGenerateFunc(f GenerateFunc) Option {
	return func(c *Coach) {
		if f != nil {
			c.generate = f
			c.enabled = true
		}
	}
}

// New creates a Coach backed by Gemini. An empty API key leaves the
// coach in its degraded state; everything else keeps working.
func New(apiKey string, opts ...Option) *Coach {
	c := &Coach{enabled: apiKey != ""}
	if c.enabled {
		c.generate = NewGeminiClient(apiKey).Generate
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enabled reports whether a generation backend is configured.
func (c *Coach) Enabled() bool {
	return c.enabled
}

// Ask forwards the user query plus numeric context to the model and
// returns the reply, or a sentinel string on any failure.
func (c *Coach) Ask(
	ctx context.Context, query string, stats Stats,
) string {
	return c.call(ctx, BuildAskPrompt(query, stats))
}

// AnalyzePerformance asks for a one-sentence read on today's
// sessions.
func (c *Coach) AnalyzePerformance(
	ctx context.Context, sessions []store.WorkSession,
) string {
	return c.call(ctx, BuildAnalyzePrompt(sessions))
}

func (c *Coach) call(ctx context.Context, prompt string) string {
	if !c.enabled {
		return MsgKeyMissing
	}
	reply, err := c.generate(ctx, prompt)
	if err != nil {
		log.Printf("coach: generation failed: %v", err)
		return MsgUnavailable
	}
	if strings.TrimSpace(reply) == "" {
		return MsgUnavailable
	}
	return reply
}
