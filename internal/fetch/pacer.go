package fetch

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer throttles provider calls. Implementations are called once after
// every request; the pipelines inject NopPacer in tests so nothing sleeps.
type Pacer interface {
	Pace(ctx context.Context) error
}

// NopPacer applies no delay.
type NopPacer struct{}

// Pace implements Pacer.
func (NopPacer) Pace(context.Context) error { return nil }

// IntervalPacer enforces a steady per-call interval and inserts a longer
// pause after every BatchSize calls, to stay under request-per-second
// ceilings that are enforced over short bursts.
type IntervalPacer struct {
	limiter    *rate.Limiter
	batchSize  int
	batchPause time.Duration
	calls      int
}

// NewIntervalPacer creates a pacer with the given per-call interval and
// batch pause. interval <= 0 disables the steady limit; batchSize <= 0
// disables the burst pause.
func NewIntervalPacer(interval time.Duration, batchSize int, batchPause time.Duration) *IntervalPacer {
	p := &IntervalPacer{
		batchSize:  batchSize,
		batchPause: batchPause,
	}
	if interval > 0 {
		p.limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
	return p
}

// Pace implements Pacer. Not safe for concurrent use; the pipelines are
// strictly sequential.
func (p *IntervalPacer) Pace(ctx context.Context) error {
	p.calls++

	if p.batchSize > 0 && p.batchPause > 0 && p.calls%p.batchSize == 0 {
		timer := time.NewTimer(p.batchPause)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	if p.limiter != nil {
		return p.limiter.Wait(ctx)
	}
	return nil
}
