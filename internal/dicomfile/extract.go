package dicomfile

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/rcliao/dcmgroup/internal/model"
)

// ExtractAll runs ex over paths with at most workers concurrent reads and
// returns the records in input order. workers <= 0 means one per CPU.
func ExtractAll(ctx context.Context, ex Extractor, paths []string, workers int) ([]*model.Metadata, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	out := make([]*model.Metadata, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, p := range paths {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = ex.Extract(p)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
