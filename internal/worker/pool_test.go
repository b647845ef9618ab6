package worker_test

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/palantir/angellist-enrichment-connector/internal/worker"
)

func TestRun_DoesNotRetry(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	fn := func(_ context.Context, _ string) (string, error) {
		calls.Add(1)
		return "", errors.New("permanent")
	}

	var got []worker.Outcome[string, string]
	sum, err := worker.Run(context.Background(), []string{"acme"}, fn, func(o worker.Outcome[string, string]) error {
		got = append(got, o)
		return nil
	}, worker.Options{Workers: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Err == nil || got[0].Err.Error() != "permanent" {
		t.Fatalf("unexpected outcomes: %#v", got)
	}
	if sum.Failed != 1 || sum.Succeeded != 0 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	if n := calls.Load(); n != 1 {
		t.Fatalf("expected 1 call, got %d", n)
	}
}

func TestRun_FailFastStops(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	calls := 0

	fn := func(_ context.Context, q string) (string, error) {
		mu.Lock()
		calls++
		mu.Unlock()

		if q == "bad" {
			return "", errors.New("boom")
		}
		t.Errorf("unexpected call for %q", q)
		return "", nil
	}

	_, err := worker.Run(context.Background(), []string{"bad", "good"}, fn, nil, worker.Options{
		Workers:       1,
		FailurePolicy: worker.FailurePolicyFailFast,
	})
	if err == nil || err.Error() != "boom" {
		t.Fatalf("expected boom error, got %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestRun_PartialOutputContinues(t *testing.T) {
	t.Parallel()

	fn := func(_ context.Context, q string) (string, error) {
		if q == "bad" {
			return "", errors.New("boom")
		}
		return "ok:" + q, nil
	}

	var outputs []string
	sum, err := worker.Run(context.Background(), []string{"bad", "good"}, fn, func(o worker.Outcome[string, string]) error {
		if o.Err == nil {
			outputs = append(outputs, o.Output)
		}
		return nil
	}, worker.Options{Workers: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Succeeded != 1 || sum.Failed != 1 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	if !slices.Equal(outputs, []string{"ok:good"}) {
		t.Fatalf("unexpected outputs: %v", outputs)
	}
}

func TestRun_CallbackSeesCompletionOrder(t *testing.T) {
	t.Parallel()

	releaseSlow := make(chan struct{})
	startedSlow := make(chan struct{})
	var firstSeen atomic.Value
	firstSeen.Store("")

	fn := func(_ context.Context, q string) (string, error) {
		if q == "slow" {
			close(startedSlow)
			<-releaseSlow
		}
		return q, nil
	}

	var mu sync.Mutex
	var seen []string
	doneErr := make(chan error, 1)
	go func() {
		_, err := worker.Run(context.Background(), []string{"slow", "fast"}, fn,
			func(o worker.Outcome[string, string]) error {
				mu.Lock()
				defer mu.Unlock()
				seen = append(seen, o.Input)
				if len(seen) == 1 {
					firstSeen.Store(o.Input)
				}
				return nil
			},
			worker.Options{Workers: 2},
		)
		doneErr <- err
	}()

	select {
	case <-startedSlow:
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for slow job to start")
	}

	deadline := time.Now().Add(1 * time.Second)
	for time.Now().Before(deadline) {
		if firstSeen.Load().(string) == "fast" {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if got := firstSeen.Load().(string); got != "fast" {
		t.Fatalf("expected fast callback first, got %q", got)
	}

	close(releaseSlow)
	select {
	case err := <-doneErr:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for completion")
	}

	mu.Lock()
	defer mu.Unlock()
	if !slices.Equal(seen, []string{"fast", "slow"}) {
		t.Fatalf("unexpected callback order: %v", seen)
	}
}

func TestRun_CallbackErrorStopsRun(t *testing.T) {
	t.Parallel()

	callbackErr := errors.New("sink failed")
	_, err := worker.Run(
		context.Background(),
		[]string{"acme"},
		func(_ context.Context, q string) (string, error) { return q, nil },
		func(worker.Outcome[string, string]) error { return callbackErr },
		worker.Options{Workers: 1},
	)
	if !errors.Is(err, callbackErr) {
		t.Fatalf("expected callback error, got %v", err)
	}
}

func TestRun_RequestTimeoutAppliesPerJob(t *testing.T) {
	t.Parallel()

	fn := func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}

	sum, err := worker.Run(context.Background(), []string{"a", "b"}, fn, nil, worker.Options{
		Workers:        2,
		RequestTimeout: 20 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Failed != 2 {
		t.Fatalf("expected 2 timeouts, got %+v", sum)
	}
}

func TestRun_ZeroRequestTimeoutSetsNoDeadline(t *testing.T) {
	t.Parallel()

	fn := func(ctx context.Context, _ string) (string, error) {
		if _, ok := ctx.Deadline(); ok {
			return "", errors.New("unexpected deadline")
		}
		return "ok", nil
	}

	sum, err := worker.Run(context.Background(), []string{"a", "b"}, fn, nil, worker.Options{Workers: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Succeeded != 2 || sum.Failed != 0 {
		t.Fatalf("expected 2 successes, got %+v", sum)
	}
}

func TestRun_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := worker.Run(ctx, []string{"a"}, func(context.Context, string) (string, error) {
		return "", nil
	}, nil, worker.Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
