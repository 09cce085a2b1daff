package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rcliao/dcmgroup/internal/model"
)

// SearchParams holds parameters for searching recorded series.
type SearchParams struct {
	Subject string
	Query   string
	Limit   int
}

// SearchResult is one series record with the run it belongs to.
type SearchResult struct {
	RunID   string        `json:"run_id"`
	Subject string        `json:"subject"`
	Session string        `json:"session,omitempty"`
	Info    model.SeqInfo `json:"info"`
}

// Search finds series whose id, protocol name or series description contain
// the query substring, newest run first.
func (s *SQLiteStore) Search(ctx context.Context, p SearchParams) ([]SearchResult, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	query := "%" + p.Query + "%"

	where := []string{`(s.series_id LIKE ?
		OR json_extract(s.record, '$.protocol_name') LIKE ?
		OR json_extract(s.record, '$.series_description') LIKE ?)`}
	args := []interface{}{query, query, query}

	if p.Subject != "" {
		where = append(where, "r.subject = ?")
		args = append(args, p.Subject)
	}

	sql := fmt.Sprintf(`
		SELECT r.id, r.subject, r.session, s.record
		FROM series s
		INNER JOIN runs r ON r.id = s.run_id
		WHERE %s
		ORDER BY r.id DESC, s.seq
		LIMIT ?`, strings.Join(where, " AND "))

	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		var record string
		if err := rows.Scan(&r.RunID, &r.Subject, &r.Session, &record); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(record), &r.Info); err != nil {
			return nil, fmt.Errorf("decode series: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
