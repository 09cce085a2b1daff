package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rcliao/dcmgroup/internal/model"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db      *sql.DB
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) newID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id          TEXT PRIMARY KEY,
		subject     TEXT NOT NULL,
		session     TEXT NOT NULL DEFAULT '',
		outdir      TEXT NOT NULL,
		created_at  TEXT NOT NULL,
		files       INTEGER NOT NULL DEFAULT 0,
		series      INTEGER NOT NULL DEFAULT 0,
		degraded    INTEGER NOT NULL DEFAULT 0,
		multi_match INTEGER NOT NULL DEFAULT 0,
		override    INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_runs_subject ON runs(subject, session);
	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at DESC);

	CREATE TABLE IF NOT EXISTS series (
		run_id    TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		seq       INTEGER NOT NULL,
		series_id TEXT NOT NULL,
		record    TEXT NOT NULL,
		PRIMARY KEY (run_id, series_id)
	);

	CREATE TABLE IF NOT EXISTS series_files (
		run_id    TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		series_id TEXT NOT NULL,
		seq       INTEGER NOT NULL,
		path      TEXT NOT NULL,
		PRIMARY KEY (run_id, series_id, seq)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) SaveRun(ctx context.Context, p SaveParams) (*model.Run, error) {
	now := time.Now().UTC()
	run := &model.Run{
		ID:         s.newID(),
		Subject:    p.Subject,
		Session:    p.Session,
		OutDir:     p.OutDir,
		CreatedAt:  now.Truncate(time.Second),
		Files:      p.Files,
		Series:     len(p.Groups),
		Degraded:   p.Degraded,
		MultiMatch: p.MultiMatch,
		Override:   p.Override,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, subject, session, outdir, created_at, files, series, degraded, multi_match, override)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Subject, run.Session, run.OutDir, now.Format(time.RFC3339),
		run.Files, run.Series, run.Degraded, run.MultiMatch, run.Override)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}

	for i, info := range p.Infos {
		b, err := json.Marshal(info)
		if err != nil {
			return nil, err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO series (run_id, seq, series_id, record) VALUES (?, ?, ?, ?)`,
			run.ID, i, info.SeriesID, string(b))
		if err != nil {
			return nil, fmt.Errorf("insert series: %w", err)
		}
	}

	for id, files := range p.Groups {
		for i, f := range files {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO series_files (run_id, series_id, seq, path) VALUES (?, ?, ?, ?)`,
				run.ID, id, i, f)
			if err != nil {
				return nil, fmt.Errorf("insert file: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return run, nil
}

func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*model.Run, []model.SeqInfo, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, subject, session, outdir, created_at, files, series, degraded, multi_match, override
		 FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT record FROM series WHERE run_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var infos []model.SeqInfo
	for rows.Next() {
		var record string
		if err := rows.Scan(&record); err != nil {
			return nil, nil, err
		}
		var info model.SeqInfo
		if err := json.Unmarshal([]byte(record), &info); err != nil {
			return nil, nil, fmt.Errorf("decode series: %w", err)
		}
		infos = append(infos, info)
	}
	return &run, infos, rows.Err()
}

func (s *SQLiteStore) ListRuns(ctx context.Context, p ListParams) ([]model.Run, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	where := []string{"1 = 1"}
	var args []interface{}
	if p.Subject != "" {
		where = append(where, "subject = ?")
		args = append(args, p.Subject)
	}

	query := fmt.Sprintf(`
		SELECT id, subject, session, outdir, created_at, files, series, degraded, multi_match, override
		FROM runs WHERE %s
		ORDER BY id DESC
		LIMIT ?`, strings.Join(where, " AND "))
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func (s *SQLiteStore) SeriesFiles(ctx context.Context, runID, seriesID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT path FROM series_files WHERE run_id = ? AND series_id = ? ORDER BY seq`,
		runID, seriesID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		files = append(files, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("series not found: %s/%s", runID, seriesID)
	}
	return files, nil
}

func (s *SQLiteStore) DeleteRun(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (model.Run, error) {
	var r model.Run
	var createdAt string
	err := row.Scan(&r.ID, &r.Subject, &r.Session, &r.OutDir, &createdAt,
		&r.Files, &r.Series, &r.Degraded, &r.MultiMatch, &r.Override)
	if err != nil {
		return r, err
	}
	r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return r, nil
}
