package timer

import (
	"errors"
	"testing"
	"time"
)

func TestStartRejectsEmptyTask(t *testing.T) {
	_, err := Start("", "Growth", time.Now())
	if !errors.Is(err, ErrEmptyTask) {
		t.Errorf("err = %v, want ErrEmptyTask", err)
	}
}

func TestElapsed(t *testing.T) {
	start := time.Date(2026, 6, 2, 10, 0, 0, 0, time.UTC)
	tm, err := Start("deep work", "Growth", start)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	now := start.Add(12*time.Minute + 30*time.Second)
	if got := tm.Elapsed(now); got != 12*time.Minute+30*time.Second {
		t.Errorf("Elapsed = %v, want 12m30s", got)
	}
}

func TestStopComputesDuration(t *testing.T) {
	start := time.Date(2026, 6, 2, 10, 0, 0, 0, time.UTC)
	end := time.Date(2026, 6, 2, 10, 25, 30, 0, time.UTC)

	tm, err := Start("deep work", "Growth", start)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	res := tm.Stop(end)
	if res.DurationMin != 25.5 {
		t.Errorf("DurationMin = %v, want 25.5", res.DurationMin)
	}
	if res.Task != "deep work" || res.Pillar != "Growth" {
		t.Errorf("Result = %+v, want task and pillar carried", res)
	}
	if !res.Start.Equal(start) || !res.End.Equal(end) {
		t.Errorf("Result times = %v..%v, want %v..%v",
			res.Start, res.End, start, end)
	}
}
