// Package httputil holds HTTP-facing helpers shared by the scan service.
package httputil

import (
	"context"
	"sync/atomic"
)

// Semaphore is the admission gate for scan requests. Scans are CPU-bound,
// so past a point extra concurrency only adds latency; requests over the
// limit are shed with a count kept for monitoring.
type Semaphore struct {
	sem  chan struct{}
	shed atomic.Int64
}

// NewSemaphore creates a semaphore admitting at most capacity holders.
func NewSemaphore(capacity int) *Semaphore {
	if capacity <= 0 {
		capacity = 64
	}
	return &Semaphore{
		sem: make(chan struct{}, capacity),
	}
}

// TryAcquire claims a slot without blocking. A false return means the
// caller should shed the request; the rejection is counted.
func (s *Semaphore) TryAcquire() bool {
	select {
	case s.sem <- struct{}{}:
		return true
	default:
		s.shed.Add(1)
		return false
	}
}

// Acquire blocks until a slot is free or ctx is done.
func (s *Semaphore) Acquire(ctx context.Context) error {
	select {
	case s.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns a slot. Must pair with a successful acquire.
func (s *Semaphore) Release() {
	select {
	case <-s.sem:
	default:
	}
}

// Stats reports the current admission state.
func (s *Semaphore) Stats() SemaphoreStats {
	return SemaphoreStats{
		Capacity:  cap(s.sem),
		InUse:     len(s.sem),
		Available: cap(s.sem) - len(s.sem),
		Shed:      s.shed.Load(),
	}
}

// SemaphoreStats provides admission metrics for the health endpoint.
type SemaphoreStats struct {
	Capacity  int   `json:"capacity"`
	InUse     int   `json:"in_use"`
	Available int   `json:"available"`
	Shed      int64 `json:"shed"`
}
