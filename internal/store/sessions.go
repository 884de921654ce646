package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/northstar-io/northstar/internal/timeutil"
)

// sessionCols is the column list for session queries.
// Keep in sync with scanSessionRow.
const sessionCols = `id, task, pillar, start_time, end_time,
	duration_min, date, created_at`

// WorkSession is one completed timed block of work. Records are
// immutable once saved; duration_min is computed at save time and
// never recomputed from the timestamps. Pillar and DurationMin are
// nullable because the table carries no schema enforcement beyond
// what the analytics layer tolerates.
type WorkSession struct {
	ID          int64    `json:"id"`
	Task        string   `json:"task"`
	Pillar      *string  `json:"pillar"`
	StartTime   *string  `json:"start_time"`
	EndTime     *string  `json:"end_time"`
	DurationMin *float64 `json:"duration_min"`
	Date        string   `json:"date"`
	CreatedAt   string   `json:"created_at"`
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSessionRow(rs rowScanner) (WorkSession, error) {
	var w WorkSession
	err := rs.Scan(
		&w.ID, &w.Task, &w.Pillar, &w.StartTime, &w.EndTime,
		&w.DurationMin, &w.Date, &w.CreatedAt,
	)
	return w, err
}

// SaveSession appends a new immutable work session. The stored date
// is the date the session was saved, not necessarily the date it
// started. There is no uniqueness constraint: concurrent saves
// produce independent records.
func (s *Store) SaveSession(
	task, pillar string, start, end time.Time, durationMin float64,
) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	res, err := s.writer.Exec(`
		INSERT INTO work_sessions (
			task, pillar, start_time, end_time,
			duration_min, date, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		task, pillar, timeutil.Ptr(start), timeutil.Ptr(end),
		durationMin, timeutil.Date(now), timeutil.Format(now),
	)
	if err != nil {
		return 0, fmt.Errorf("saving session: %w", err)
	}
	return res.LastInsertId()
}

// AllSessions returns every work session. No ordering is applied;
// callers impose their own.
func (s *Store) AllSessions(
	ctx context.Context,
) ([]WorkSession, error) {
	rows, err := s.reader.QueryContext(ctx,
		"SELECT "+sessionCols+" FROM work_sessions")
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var sessions []WorkSession
	for rows.Next() {
		w, err := scanSessionRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sessions = append(sessions, w)
	}
	return sessions, rows.Err()
}

// RecentSessions returns the limit most recently created sessions,
// newest first.
func (s *Store) RecentSessions(
	ctx context.Context, limit int,
) ([]WorkSession, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.reader.QueryContext(ctx,
		"SELECT "+sessionCols+` FROM work_sessions
		ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent sessions: %w", err)
	}
	defer rows.Close()

	var sessions []WorkSession
	for rows.Next() {
		w, err := scanSessionRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sessions = append(sessions, w)
	}
	return sessions, rows.Err()
}

// TodaySessions returns the sessions saved on the given date, newest
// first. The filter is an exact string match on the date column; the
// ordering is re-applied in memory rather than trusted from the
// filtered query.
func (s *Store) TodaySessions(
	ctx context.Context, today string,
) ([]WorkSession, error) {
	rows, err := s.reader.QueryContext(ctx,
		"SELECT "+sessionCols+
			" FROM work_sessions WHERE date = ?", today)
	if err != nil {
		return nil, fmt.Errorf("querying today sessions: %w", err)
	}
	defer rows.Close()

	var sessions []WorkSession
	for rows.Next() {
		w, err := scanSessionRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sessions = append(sessions, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].CreatedAt != sessions[j].CreatedAt {
			return sessions[i].CreatedAt > sessions[j].CreatedAt
		}
		return sessions[i].ID > sessions[j].ID
	})
	return sessions, nil
}
