// Package pipeline drives providers over a set of requests, level by level.
//
// Level 0 holds the input requests. Follow-up requests produced while assembling clues
// (people found through organization roles) form the next level, up to MaxDepth.
// Queries are deduplicated across the whole run per provider.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/palantir/angellist-enrichment-connector/internal/entity"
	"github.com/palantir/angellist-enrichment-connector/internal/external"
	"github.com/palantir/angellist-enrichment-connector/internal/redact"
	"github.com/palantir/angellist-enrichment-connector/internal/worker"
)

type Options struct {
	Workers        int
	RequestTimeout time.Duration
	RateLimitRPS   float64
	FailFast       bool
	// MaxDepth bounds follow-up levels; 0 runs the input requests only.
	MaxDepth int
	// ImageWorkers bounds concurrent preview image fetches (default 4).
	ImageWorkers int
	Logger       *zap.Logger
}

// Emit receives clues one at a time from a single goroutine.
type Emit func(entity.Clue) error

// Stats summarizes a run.
type Stats struct {
	RunID             uuid.UUID
	Levels            int
	Requests          int
	Queries           int
	DuplicateQueries  int
	Succeeded         int
	Failed            int
	Results           int
	Clues             int
	FollowUps         int
	DroppedFollowUps  int
	ImagesScheduled   int
	ImageFetchFailure int
}

type job struct {
	provider external.Provider
	query    external.Query
	request  external.Request
}

type seenKey struct {
	provider string
	query    external.QueryKey
	scope    string
}

// Run executes every accepted query for requests and their follow-ups, sending clues to emit
// and preview images to images (which may be nil). Failed queries are logged and counted;
// with FailFast the first failure ends the run.
func Run(
	ctx context.Context,
	providers []external.Provider,
	requests []external.Request,
	opts Options,
	emit Emit,
	images ImageFetcher,
) (Stats, error) {
	stats := Stats{RunID: uuid.New()}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("run_id", stats.RunID.String()))

	policy := worker.FailurePolicyPartialOutput
	if opts.FailFast {
		policy = worker.FailurePolicyFailFast
	}
	wopts := worker.Options{
		Workers:        opts.Workers,
		RequestTimeout: opts.RequestTimeout,
		RateLimitRPS:   opts.RateLimitRPS,
		FailurePolicy:  policy,
	}

	seen := make(map[seenKey]bool)
	level := requests
	for depth := 0; len(level) > 0; depth++ {
		stats.Levels++
		stats.Requests += len(level)

		jobs := planLevel(providers, level, seen, &stats)
		log.Info("pipeline: level planned",
			zap.Int("depth", depth),
			zap.Int("requests", len(level)),
			zap.Int("queries", len(jobs)),
		)

		var (
			next []external.Request
			imgs []external.ImageRef
		)
		sum, err := worker.Run(ctx, jobs,
			func(ctx context.Context, j job) ([]external.Result, error) {
				return j.provider.ExecuteSearch(ctx, j.query)
			},
			func(o worker.Outcome[job, []external.Result]) error {
				q := o.Input.query
				if o.Err != nil {
					log.Warn("pipeline: query failed",
						zap.String("provider", o.Input.provider.ID()),
						zap.String("entity_type", string(q.EntityType)),
						zap.String("kind", string(q.Kind)),
						zap.String("query", q.Value),
						zap.String("error", redact.Error(o.Err)),
					)
					return nil
				}
				log.Debug("pipeline: query done",
					zap.String("query", q.Value),
					zap.Int("results", len(o.Output)),
					zap.Duration("elapsed", o.Elapsed),
				)
				for _, r := range o.Output {
					stats.Results++
					out := o.Input.provider.BuildClues(q, r, o.Input.request)
					for _, c := range out.Clues {
						if err := emit(c); err != nil {
							return eris.Wrapf(err, "emit clue %s", c.Code)
						}
						stats.Clues++
					}
					imgs = append(imgs, out.Images...)
					if depth >= opts.MaxDepth {
						stats.DroppedFollowUps += len(out.SubRequests)
						continue
					}
					for _, sub := range out.SubRequests {
						sub.Depth = depth + 1
						next = append(next, sub)
					}
				}
				return nil
			},
			wopts,
		)
		stats.Succeeded += sum.Succeeded
		stats.Failed += sum.Failed
		if err != nil {
			return stats, eris.Wrapf(err, "pipeline: level %d", depth)
		}

		fetchImages(ctx, images, imgs, opts.ImageWorkers, log, &stats)

		stats.FollowUps += len(next)
		level = next
	}

	log.Info("pipeline: run complete",
		zap.Int("levels", stats.Levels),
		zap.Int("queries", stats.Queries),
		zap.Int("failed", stats.Failed),
		zap.Int("clues", stats.Clues),
	)
	return stats, nil
}

// planLevel builds the queries for one level, skipping any already planned in this run.
func planLevel(providers []external.Provider, level []external.Request, seen map[seenKey]bool, stats *Stats) []job {
	var jobs []job
	for _, req := range level {
		for _, p := range providers {
			if !p.Accepts(req.EntityType) {
				continue
			}
			for _, q := range p.BuildQueries(req) {
				k := seenKey{provider: p.ID(), query: q.Key(), scope: q.Scope}
				if seen[k] {
					stats.DuplicateQueries++
					continue
				}
				seen[k] = true
				jobs = append(jobs, job{provider: p, query: q, request: req})
			}
		}
	}
	stats.Queries += len(jobs)
	return jobs
}
