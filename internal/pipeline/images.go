package pipeline

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/palantir/angellist-enrichment-connector/internal/external"
	"github.com/palantir/angellist-enrichment-connector/internal/redact"
)

// ImageFetcher retrieves a preview image on behalf of the host.
type ImageFetcher interface {
	Fetch(ctx context.Context, ref external.ImageRef) error
}

// LogImageFetcher records image requests without downloading anything.
type LogImageFetcher struct {
	Logger *zap.Logger
}

func (f LogImageFetcher) Fetch(_ context.Context, ref external.ImageRef) error {
	if f.Logger != nil {
		f.Logger.Debug("pipeline: preview image", zap.String("owner", ref.Owner.String()), zap.String("url", ref.URL))
	}
	return nil
}

// fetchImages dispatches refs with bounded concurrency. Failures are logged and counted only.
func fetchImages(ctx context.Context, f ImageFetcher, refs []external.ImageRef, workers int, log *zap.Logger, stats *Stats) {
	if f == nil || len(refs) == 0 {
		return
	}
	if workers <= 0 {
		workers = 4
	}
	stats.ImagesScheduled += len(refs)

	var failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, ref := range refs {
		g.Go(func() error {
			if err := f.Fetch(gctx, ref); err != nil {
				failed.Add(1)
				log.Warn("pipeline: image fetch failed",
					zap.String("owner", ref.Owner.String()),
					zap.String("error", redact.Error(err)),
				)
			}
			return nil
		})
	}
	_ = g.Wait()
	stats.ImageFetchFailure += int(failed.Load())
}
