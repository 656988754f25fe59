package sampler

import (
	"sync/atomic"
	"time"
)

// Metrics receives operational counters from a running sampler. Implement
// it to integrate with a monitoring system; use NoopMetrics to opt out.
type Metrics interface {
	// RecordTick is called after each capture. regions is the number of
	// regions in the produced snapshot; err is non-nil when the tick fell
	// back to an empty snapshot because the source was unavailable.
	RecordTick(duration time.Duration, regions int, err error)

	// RecordCallbackPanic is called each time a snapshot callback panics.
	RecordCallbackPanic()
}

// NoopMetrics is a no-op Metrics implementation.
type NoopMetrics struct{}

func (NoopMetrics) RecordTick(time.Duration, int, error) {}
func (NoopMetrics) RecordCallbackPanic()                 {}

// BasicMetrics is a simple in-memory Metrics implementation backed by
// atomic counters. Useful for debugging and tests.
type BasicMetrics struct {
	TickCount      atomic.Int64
	TickErrors     atomic.Int64
	TickTotalNanos atomic.Int64
	CallbackPanics atomic.Int64
}

// RecordTick implements Metrics.
func (b *BasicMetrics) RecordTick(duration time.Duration, regions int, err error) {
	b.TickCount.Add(1)
	b.TickTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.TickErrors.Add(1)
	}
}

// RecordCallbackPanic implements Metrics.
func (b *BasicMetrics) RecordCallbackPanic() {
	b.CallbackPanics.Add(1)
}
