package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/northstar-io/northstar/internal/timeutil"
)

// Habit is a recurring daily commitment. The streak is a toggle
// counter, not a true consecutive-day calculation: it increments when
// last_done flips to today and decrements (floored at zero) when the
// flip is undone.
type Habit struct {
	ID       int64   `json:"id"`
	Title    string  `json:"title"`
	Streak   int     `json:"streak"`
	LastDone *string `json:"last_done"`
	// DoneToday is derived at query time, not stored.
	DoneToday bool   `json:"done_today"`
	CreatedAt string `json:"created_at"`
}

// AddHabit creates a habit with a zero streak.
func (s *Store) AddHabit(title string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.writer.Exec(`
		INSERT INTO habits (title, streak, last_done, created_at)
		VALUES (?, 0, NULL, ?)`,
		title, timeutil.Format(s.now()),
	)
	if err != nil {
		return 0, fmt.Errorf("adding habit: %w", err)
	}
	return res.LastInsertId()
}

// Habits returns all habits, oldest created first. DoneToday is
// derived against the given date.
func (s *Store) Habits(
	ctx context.Context, today string,
) ([]Habit, error) {
	rows, err := s.reader.QueryContext(ctx, `
		SELECT id, title, streak, last_done, created_at
		FROM habits ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying habits: %w", err)
	}
	defer rows.Close()

	var habits []Habit
	for rows.Next() {
		var h Habit
		if err := rows.Scan(
			&h.ID, &h.Title, &h.Streak, &h.LastDone, &h.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning habit: %w", err)
		}
		h.DoneToday = h.LastDone != nil && *h.LastDone == today
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

// ToggleHabit flips a habit's done state for the given date. Marking
// done sets last_done to today and increments the streak; undoing
// clears last_done and decrements the streak, floored at zero.
// Toggling twice restores the habit to its prior state.
func (s *Store) ToggleHabit(id int64, today string) error {
	return s.Update(func(tx *sql.Tx) error {
		var streak int
		var lastDone *string
		err := tx.QueryRow(
			"SELECT streak, last_done FROM habits WHERE id = ?", id,
		).Scan(&streak, &lastDone)
		if err == sql.ErrNoRows {
			return fmt.Errorf("habit %d: %w", id, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("reading habit %d: %w", id, err)
		}

		if lastDone != nil && *lastDone == today {
			streak--
			if streak < 0 {
				streak = 0
			}
			_, err = tx.Exec(
				"UPDATE habits SET last_done = NULL, streak = ? WHERE id = ?",
				streak, id,
			)
		} else {
			_, err = tx.Exec(
				"UPDATE habits SET last_done = ?, streak = ? WHERE id = ?",
				today, streak+1, id,
			)
		}
		if err != nil {
			return fmt.Errorf("toggling habit %d: %w", id, err)
		}
		return nil
	})
}

// DeleteHabit removes a habit by ID.
func (s *Store) DeleteHabit(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.writer.Exec("DELETE FROM habits WHERE id = ?", id)
	return err
}
