package store

import (
	"context"
	"fmt"

	"github.com/rcliao/dcmgroup/internal/model"
)

// ExportGroups rebuilds the file group map recorded for a run.
func (s *SQLiteStore) ExportGroups(ctx context.Context, runID string) (model.FileGroupMap, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE id = ?`, runID).Scan(&n); err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT series_id, path FROM series_files WHERE run_id = ? ORDER BY series_id, seq`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := model.FileGroupMap{}
	for rows.Next() {
		var id, path string
		if err := rows.Scan(&id, &path); err != nil {
			return nil, err
		}
		groups[id] = append(groups[id], path)
	}
	return groups, rows.Err()
}
