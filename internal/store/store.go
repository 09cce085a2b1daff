// Package store provides the run catalog interface and SQLite implementation.
package store

import (
	"context"
	"errors"

	"github.com/rcliao/dcmgroup/internal/model"
)

// ErrRunNotFound is returned when a run id is not in the catalog.
var ErrRunNotFound = errors.New("run not found")

// SaveParams holds the outputs of one grouping pass.
type SaveParams struct {
	Subject    string
	Session    string
	OutDir     string
	Files      int
	Degraded   int
	MultiMatch int
	Override   bool
	Infos      []model.SeqInfo
	Groups     model.FileGroupMap
}

// ListParams holds parameters for listing runs.
type ListParams struct {
	Subject string
	Limit   int
}

// Store defines the run catalog interface.
type Store interface {
	// SaveRun records a pass and returns the created run.
	SaveRun(ctx context.Context, p SaveParams) (*model.Run, error)

	// GetRun returns a run and its series records in canonical order.
	GetRun(ctx context.Context, id string) (*model.Run, []model.SeqInfo, error)

	// ListRuns lists runs, newest first.
	ListRuns(ctx context.Context, p ListParams) ([]model.Run, error)

	// SeriesFiles returns the files of one series of a run in arrival order.
	SeriesFiles(ctx context.Context, runID, seriesID string) ([]string, error)

	// Search finds recorded series by id, protocol name or description.
	Search(ctx context.Context, p SearchParams) ([]SearchResult, error)

	// DeleteRun removes a run with its series and files.
	DeleteRun(ctx context.Context, id string) error

	// Close closes the store.
	Close() error
}
