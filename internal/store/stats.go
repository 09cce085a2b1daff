package store

import (
	"context"
	"fmt"
	"os"
)

// Stats holds catalog statistics.
type Stats struct {
	DBPath      string         `json:"db_path"`
	DBSizeBytes int64          `json:"db_size_bytes"`
	Runs        int            `json:"runs"`
	Series      int            `json:"series"`
	Files       int            `json:"files"`
	Subjects    []SubjectStats `json:"subjects"`
}

// SubjectStats holds per-subject counts.
type SubjectStats struct {
	Subject string `json:"subject"`
	Runs    int    `json:"runs"`
	Series  int    `json:"series"`
}

// Stats returns catalog statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	// DB file size
	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	counts := []struct {
		table string
		dest  *int
	}{{"runs", &st.Runs}, {"series", &st.Series}, {"series_files", &st.Files}}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+c.table).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("count %s: %w", c.table, err)
		}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT subject, COUNT(*) AS cnt, COALESCE(SUM(series), 0)
		FROM runs
		GROUP BY subject ORDER BY cnt DESC, subject`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var ss SubjectStats
		if err := rows.Scan(&ss.Subject, &ss.Runs, &ss.Series); err != nil {
			return nil, err
		}
		st.Subjects = append(st.Subjects, ss)
	}

	return st, rows.Err()
}
