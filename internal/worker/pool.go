// Package worker runs independent jobs on a bounded pool with a shared rate limit.
//
// Jobs are attempted once. Directory calls are not retried: a failed query is reported
// to the caller and counted, and the run either continues or stops depending on the
// failure policy.
package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

type FailurePolicy int

const (
	// FailurePolicyPartialOutput records failures and keeps going.
	FailurePolicyPartialOutput FailurePolicy = iota
	// FailurePolicyFailFast cancels the run on the first failed job.
	FailurePolicyFailFast
)

type Options struct {
	Workers int
	// RequestTimeout bounds each job. Zero leaves jobs bounded only by ctx.
	RequestTimeout time.Duration

	// RateLimitRPS is a global limit across all workers. Set to <=0 to disable.
	RateLimitRPS float64

	FailurePolicy FailurePolicy
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.RequestTimeout < 0 {
		o.RequestTimeout = 0
	}
	return o
}

// Outcome is the completion record for one job.
type Outcome[In any, Out any] struct {
	Input   In
	Output  Out
	Err     error
	Elapsed time.Duration
}

// Summary counts completed jobs.
type Summary struct {
	Succeeded int
	Failed    int
}

// Run applies fn to every item and calls onDone from the calling goroutine in completion
// order. A non-nil error from onDone stops the run and is returned. Under
// FailurePolicyFailFast the first job error stops the run and is returned.
func Run[In any, Out any](
	ctx context.Context,
	items []In,
	fn func(context.Context, In) (Out, error),
	onDone func(Outcome[In, Out]) error,
	opts Options,
) (Summary, error) {
	opts = opts.withDefaults()

	stopCtx, stop := context.WithCancel(ctx)
	defer stop()
	g, runCtx := errgroup.WithContext(stopCtx)

	var limiter *rate.Limiter
	if opts.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimitRPS), 1)
	}

	jobs := make(chan In)
	done := make(chan Outcome[In, Out], opts.Workers)

	g.Go(func() error {
		defer close(jobs)
		for _, item := range items {
			select {
			case jobs <- item:
			case <-runCtx.Done():
				return nil
			}
		}
		return nil
	})

	var workers sync.WaitGroup
	for i := 0; i < opts.Workers; i++ {
		workers.Add(1)
		g.Go(func() error {
			defer workers.Done()
			for item := range jobs {
				if runCtx.Err() != nil {
					return nil
				}
				o := runOne(runCtx, item, fn, limiter, opts.RequestTimeout)
				select {
				case done <- o:
				case <-runCtx.Done():
					return nil
				}
				if o.Err != nil && opts.FailurePolicy == FailurePolicyFailFast {
					return o.Err
				}
			}
			return nil
		})
	}

	go func() {
		workers.Wait()
		close(done)
	}()

	var (
		sum   Summary
		cbErr error
	)
	for o := range done {
		if o.Err != nil {
			sum.Failed++
		} else {
			sum.Succeeded++
		}
		if onDone == nil || cbErr != nil {
			continue
		}
		if err := onDone(o); err != nil {
			cbErr = err
			stop()
		}
	}

	err := g.Wait()
	if cbErr != nil {
		return sum, cbErr
	}
	if err != nil {
		return sum, err
	}
	if err := ctx.Err(); err != nil {
		return sum, err
	}
	return sum, nil
}

func runOne[In any, Out any](
	ctx context.Context,
	item In,
	fn func(context.Context, In) (Out, error),
	limiter *rate.Limiter,
	timeout time.Duration,
) Outcome[In, Out] {
	start := time.Now()
	o := Outcome[In, Out]{Input: item}

	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			o.Err = err
			o.Elapsed = time.Since(start)
			return o
		}
	}

	reqCtx, cancel := ctx, context.CancelFunc(func() {})
	if timeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, timeout)
	}
	defer cancel()

	out, err := fn(reqCtx, item)
	if err != nil && errors.Is(err, context.Canceled) && ctx.Err() != nil {
		err = ctx.Err()
	}
	o.Output = out
	o.Err = err
	o.Elapsed = time.Since(start)
	return o
}
