package procmem

import "github.com/hupe1980/procmem/sampler"

// MetricsCollector receives operational counters from the sampling loop.
// Implement it to integrate with monitoring systems like Prometheus; see
// sampler.Metrics for the method contracts.
type MetricsCollector = sampler.Metrics

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector = sampler.NoopMetrics

// BasicMetricsCollector provides simple in-memory metrics collection backed
// by atomic counters. Useful for debugging and basic monitoring without
// external dependencies.
type BasicMetricsCollector = sampler.BasicMetrics
