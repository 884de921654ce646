// Package timer models the running work timer as explicit state.
// There is no ticking goroutine: elapsed time is a pure function of
// "now" and the stored start, and the interactive surface drives its
// own refresh.
package timer

import (
	"errors"
	"time"
)

// ErrEmptyTask rejects timers started without a task label.
var ErrEmptyTask = errors.New("task must not be empty")

// Timer is a running work session that has not been saved yet.
type Timer struct {
	Task      string
	Pillar    string
	StartedAt time.Time
}

// Result is a stopped timer ready to be persisted. DurationMin is
// computed here, once, and becomes the authoritative stored value.
type Result struct {
	Task        string
	Pillar      string
	Start       time.Time
	End         time.Time
	DurationMin float64
}

// Start begins a timer at now.
func Start(task, pillar string, now time.Time) (*Timer, error) {
	if task == "" {
		return nil, ErrEmptyTask
	}
	return &Timer{Task: task, Pillar: pillar, StartedAt: now}, nil
}

// Elapsed returns how long the timer has been running as of now.
func (t *Timer) Elapsed(now time.Time) time.Duration {
	return now.Sub(t.StartedAt)
}

// Stop ends the timer at now and returns the session to persist.
func (t *Timer) Stop(now time.Time) Result {
	return Result{
		Task:        t.Task,
		Pillar:      t.Pillar,
		Start:       t.StartedAt,
		End:         now,
		DurationMin: now.Sub(t.StartedAt).Minutes(),
	}
}
