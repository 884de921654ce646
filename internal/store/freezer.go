package store

import (
	"context"
	"fmt"

	"github.com/northstar-io/northstar/internal/timeutil"
)

// FrozenIdea is a parked distraction. Write-once, listed newest
// first, never aggregated.
type FrozenIdea struct {
	ID        int64  `json:"id"`
	Idea      string `json:"idea"`
	CreatedAt string `json:"created_at"`
}

// FreezeIdea appends an idea to the freezer.
func (s *Store) FreezeIdea(idea string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.writer.Exec(
		"INSERT INTO freezer (idea, created_at) VALUES (?, ?)",
		idea, timeutil.Format(s.now()),
	)
	if err != nil {
		return 0, fmt.Errorf("freezing idea: %w", err)
	}
	return res.LastInsertId()
}

// FrozenIdeas returns all frozen ideas, newest first.
func (s *Store) FrozenIdeas(
	ctx context.Context,
) ([]FrozenIdea, error) {
	rows, err := s.reader.QueryContext(ctx, `
		SELECT id, idea, created_at FROM freezer
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying freezer: %w", err)
	}
	defer rows.Close()

	var ideas []FrozenIdea
	for rows.Next() {
		var f FrozenIdea
		if err := rows.Scan(&f.ID, &f.Idea, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning frozen idea: %w", err)
		}
		ideas = append(ideas, f)
	}
	return ideas, rows.Err()
}
