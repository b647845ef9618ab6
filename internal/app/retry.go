package app

import (
	"context"
	"errors"
	"net"
	"syscall"
	"time"

	"github.com/palantir/angellist-enrichment-connector/pkg/foundry"
)

// Foundry calls are retried on transient failures. Directory calls never are.
const (
	foundryAttempts     = 8
	foundryInitialSleep = 200 * time.Millisecond
	foundryMaxSleep     = 2 * time.Second
)

func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if code := foundry.StatusCode(err); code != 0 {
		return code == 429 || code/100 == 5
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED)
}

func retryTransient(ctx context.Context, attempts int, initialSleep time.Duration, f func() error) error {
	sleep := initialSleep
	var lastErr error
	for i := 0; i < attempts; i++ {
		lastErr = f()
		if lastErr == nil {
			return nil
		}
		if !isTransient(lastErr) || i == attempts-1 || ctx.Err() != nil {
			return lastErr
		}

		t := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		sleep = min(sleep*2, foundryMaxSleep)
	}
	return lastErr
}

func retryFoundry(ctx context.Context, f func() error) error {
	return retryTransient(ctx, foundryAttempts, foundryInitialSleep, f)
}
