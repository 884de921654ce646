package server_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"
)

type habitJSON struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Streak    int    `json:"streak"`
	DoneToday bool   `json:"done_today"`
}

func (te *testEnv) listHabits(t *testing.T) []habitJSON {
	t.Helper()
	rr := te.do(t, "GET", "/api/v1/habits", nil)
	mustStatus(t, rr, http.StatusOK)
	var got struct {
		Habits []habitJSON `json:"habits"`
	}
	decodeJSON(t, rr, &got)
	return got.Habits
}

func TestHabitToggleRoundTrip(t *testing.T) {
	te := setup(t)

	rr := te.do(t, "POST", "/api/v1/habits",
		map[string]string{"title": "Morning run"})
	mustStatus(t, rr, http.StatusCreated)
	var created struct {
		ID int64 `json:"id"`
	}
	decodeJSON(t, rr, &created)

	toggle := fmt.Sprintf("/api/v1/habits/%d/toggle", created.ID)

	rr = te.do(t, "POST", toggle, nil)
	mustStatus(t, rr, http.StatusNoContent)

	habits := te.listHabits(t)
	if len(habits) != 1 {
		t.Fatalf("habits = %d, want 1", len(habits))
	}
	if !habits[0].DoneToday || habits[0].Streak != 1 {
		t.Errorf("after toggle: done=%v streak=%d, want done streak 1",
			habits[0].DoneToday, habits[0].Streak)
	}

	// Second toggle undoes the first.
	rr = te.do(t, "POST", toggle, nil)
	mustStatus(t, rr, http.StatusNoContent)

	habits = te.listHabits(t)
	if habits[0].DoneToday || habits[0].Streak != 0 {
		t.Errorf("after undo: done=%v streak=%d, want undone streak 0",
			habits[0].DoneToday, habits[0].Streak)
	}
}

func TestHabitValidation(t *testing.T) {
	te := setup(t)

	rr := te.do(t, "POST", "/api/v1/habits",
		map[string]string{"title": "  "})
	mustStatus(t, rr, http.StatusBadRequest)

	rr = te.do(t, "POST", "/api/v1/habits/999/toggle", nil)
	mustStatus(t, rr, http.StatusNotFound)

	rr = te.do(t, "POST", "/api/v1/habits/abc/toggle", nil)
	mustStatus(t, rr, http.StatusBadRequest)
}

func TestHabitDelete(t *testing.T) {
	te := setup(t)

	rr := te.do(t, "POST", "/api/v1/habits",
		map[string]string{"title": "Read"})
	mustStatus(t, rr, http.StatusCreated)
	var created struct {
		ID int64 `json:"id"`
	}
	decodeJSON(t, rr, &created)

	rr = te.do(t, "DELETE",
		fmt.Sprintf("/api/v1/habits/%d", created.ID), nil)
	mustStatus(t, rr, http.StatusNoContent)

	if habits := te.listHabits(t); len(habits) != 0 {
		t.Errorf("habits = %d, want 0", len(habits))
	}
}

func TestFreezerEndpoints(t *testing.T) {
	te := setup(t)

	rr := te.do(t, "POST", "/api/v1/freezer",
		map[string]string{"idea": " "})
	mustStatus(t, rr, http.StatusBadRequest)

	for _, idea := range []string{"rewrite in a new stack", "learn piano"} {
		rr = te.do(t, "POST", "/api/v1/freezer",
			map[string]string{"idea": idea})
		mustStatus(t, rr, http.StatusCreated)
		te.clock.Advance(time.Minute)
	}

	rr = te.do(t, "GET", "/api/v1/freezer", nil)
	mustStatus(t, rr, http.StatusOK)
	var got struct {
		Ideas []struct {
			Idea string `json:"idea"`
		} `json:"ideas"`
	}
	decodeJSON(t, rr, &got)
	if len(got.Ideas) != 2 {
		t.Fatalf("ideas = %d, want 2", len(got.Ideas))
	}
	if got.Ideas[0].Idea != "learn piano" {
		t.Errorf("first = %q, want newest first", got.Ideas[0].Idea)
	}
}

func TestTaskEndpoints(t *testing.T) {
	te := setup(t)

	rr := te.do(t, "POST", "/api/v1/tasks",
		map[string]string{"title": "Pay invoice"})
	mustStatus(t, rr, http.StatusCreated)
	var created struct {
		ID int64 `json:"id"`
	}
	decodeJSON(t, rr, &created)

	rr = te.do(t, "POST",
		fmt.Sprintf("/api/v1/tasks/%d/toggle", created.ID), nil)
	mustStatus(t, rr, http.StatusNoContent)

	rr = te.do(t, "GET", "/api/v1/tasks", nil)
	mustStatus(t, rr, http.StatusOK)
	var got struct {
		Tasks []struct {
			Title  string `json:"title"`
			IsDone bool   `json:"is_done"`
		} `json:"tasks"`
	}
	decodeJSON(t, rr, &got)
	if len(got.Tasks) != 1 || !got.Tasks[0].IsDone {
		t.Errorf("unexpected tasks: %+v", got.Tasks)
	}

	rr = te.do(t, "DELETE",
		fmt.Sprintf("/api/v1/tasks/%d", created.ID), nil)
	mustStatus(t, rr, http.StatusNoContent)
}
