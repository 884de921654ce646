package store

import (
	"context"
	"fmt"

	"github.com/northstar-io/northstar/internal/timeutil"
)

// Task is a legacy checklist item. The task list predates the timer
// and survives mostly to feed the coach's work-in-progress count.
type Task struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	IsDone    bool   `json:"is_done"`
	CreatedAt string `json:"created_at"`
}

// AddTask creates an undone task.
func (s *Store) AddTask(title string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.writer.Exec(
		"INSERT INTO tasks (title, is_done, created_at) VALUES (?, 0, ?)",
		title, timeutil.Format(s.now()),
	)
	if err != nil {
		return 0, fmt.Errorf("adding task: %w", err)
	}
	return res.LastInsertId()
}

// Tasks returns all tasks, undone first, oldest created first within
// each group.
func (s *Store) Tasks(ctx context.Context) ([]Task, error) {
	rows, err := s.reader.QueryContext(ctx, `
		SELECT id, title, is_done, created_at FROM tasks
		ORDER BY is_done ASC, created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		var t Task
		if err := rows.Scan(
			&t.ID, &t.Title, &t.IsDone, &t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// ToggleTask flips a task's done state.
func (s *Store) ToggleTask(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.writer.Exec(
		"UPDATE tasks SET is_done = NOT is_done WHERE id = ?", id,
	)
	return err
}

// DeleteTask removes a task by ID.
func (s *Store) DeleteTask(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.writer.Exec("DELETE FROM tasks WHERE id = ?", id)
	return err
}

// ActiveTaskCount returns the number of undone tasks. The coach uses
// this as its work-in-progress signal.
func (s *Store) ActiveTaskCount(ctx context.Context) (int, error) {
	var n int
	err := s.reader.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM tasks WHERE is_done = 0").Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting active tasks: %w", err)
	}
	return n, nil
}
