package core

// limiter.go bounds how many uploads are ingested at once.
//
// Each preview or import holds one slot of a weighted semaphore for its
// whole run. When all slots are taken, callers wait up to maxWait before
// failing with ErrTooManyUploads. WaitForDrain takes every slot at once,
// so it returns only after in-flight ingestions have released theirs.

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// ErrTooManyUploads is returned when all slots are occupied and the wait
// timeout expires. Clients should retry after a short delay.
var ErrTooManyUploads = errors.New("too many concurrent uploads, please try again later")

// DefaultMaxConcurrentUploads is the default limit for parallel ingestions.
const DefaultMaxConcurrentUploads = 5

// DefaultMaxWaitTime is how long to wait for a slot before rejecting.
const DefaultMaxWaitTime = 30 * time.Second

// IngestLimiter controls concurrent ingestion.
type IngestLimiter struct {
	sem     *semaphore.Weighted
	size    int64
	maxWait time.Duration
	active  atomic.Int64
}

// NewIngestLimiter allows at most maxConcurrent simultaneous ingestions.
// Callers that cannot get a slot within maxWait receive ErrTooManyUploads.
func NewIngestLimiter(maxConcurrent int, maxWait time.Duration) *IngestLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentUploads
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}

	return &IngestLimiter{
		sem:     semaphore.NewWeighted(int64(maxConcurrent)),
		size:    int64(maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire waits for a slot. The caller MUST call Release when done.
func (l *IngestLimiter) Acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	if err := l.sem.Acquire(waitCtx, 1); err != nil {
		// Caller cancellation wins over our own wait timeout
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrTooManyUploads
	}

	l.active.Add(1)
	return nil
}

// TryAcquire takes a slot without blocking and reports whether it did.
func (l *IngestLimiter) TryAcquire() bool {
	if !l.sem.TryAcquire(1) {
		return false
	}
	l.active.Add(1)
	return true
}

// Release frees a slot taken by Acquire or TryAcquire.
func (l *IngestLimiter) Release() {
	l.active.Add(-1)
	l.sem.Release(1)
}

// ActiveCount returns the number of ingestions holding a slot.
func (l *IngestLimiter) ActiveCount() int {
	return int(l.active.Load())
}

// MaxConcurrent returns the slot count.
func (l *IngestLimiter) MaxConcurrent() int {
	return int(l.size)
}

// WaitForDrain blocks until every active ingestion completes or ctx is done.
// Used for graceful shutdown.
func (l *IngestLimiter) WaitForDrain(ctx context.Context) error {
	if err := l.sem.Acquire(ctx, l.size); err != nil {
		return err
	}
	l.sem.Release(l.size)
	return nil
}

// LimiterStatus is a snapshot of the limiter's current state.
type LimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"maxConcurrent"`
}

// Status returns the current limiter state for monitoring.
func (l *IngestLimiter) Status() LimiterStatus {
	active, size := l.ActiveCount(), l.MaxConcurrent()
	return LimiterStatus{
		Active:        active,
		Available:     size - active,
		MaxConcurrent: size,
	}
}
