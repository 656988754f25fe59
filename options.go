package procmem

import (
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/hupe1980/procmem/sampler"
)

type options struct {
	procRoot        string
	useSmaps        bool
	interval        time.Duration
	maxSnapshots    int
	prettyJSON      bool
	skipKernel      bool
	scanConcurrency int
	scanRate        rate.Limit
	logger          *Logger
	metrics         sampler.Metrics
}

// Option configures Collector construction and ScanAll behavior.
type Option func(*options)

// WithSmaps enables detailed per-region stats enrichment from the smaps
// listing. Enrichment costs noticeably more kernel time per capture.
func WithSmaps() Option {
	return func(o *options) {
		o.useSmaps = true
	}
}

// WithInterval sets the delay between sampling ticks. Values <= 0 fall back
// to the sampler default.
func WithInterval(d time.Duration) Option {
	return func(o *options) {
		o.interval = d
	}
}

// WithMaxSnapshots bounds the sampling history. When the bound is reached
// the oldest snapshot is evicted to make room; 0 means unbounded.
func WithMaxSnapshots(n int) Option {
	return func(o *options) {
		o.maxSnapshots = n
	}
}

// WithPrettyJSON controls whether ToJSON indents its output. Defaults to
// true.
func WithPrettyJSON(pretty bool) Option {
	return func(o *options) {
		o.prettyJSON = pretty
	}
}

// WithProcRoot points the collector at an alternate proc mount, e.g. a host
// mount inside a container or a fixture tree in tests.
func WithProcRoot(root string) Option {
	return func(o *options) {
		o.procRoot = root
	}
}

// WithSkipKernel excludes kernel threads (processes with no user-space
// mappings) from ScanAll reports.
func WithSkipKernel() Option {
	return func(o *options) {
		o.skipKernel = true
	}
}

// WithScanConcurrency sets how many processes ScanAll reads concurrently.
// Values <= 0 use a runtime-sized default.
func WithScanConcurrency(n int) Option {
	return func(o *options) {
		o.scanConcurrency = n
	}
}

// WithScanRateLimit throttles ScanAll to at most perSecond process reads per
// second, to keep a full-system scan from monopolizing the proc mount.
// 0 disables throttling.
func WithScanRateLimit(perSecond float64) Option {
	return func(o *options) {
		o.scanRate = rate.Limit(perSecond)
	}
}

// WithLogger configures structured logging. Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetrics configures a metrics collector for sampling operations. Pass
// nil to disable metrics collection.
func WithMetrics(m sampler.Metrics) Option {
	return func(o *options) {
		if m == nil {
			m = sampler.NoopMetrics{}
		}
		o.metrics = m
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		prettyJSON: true,
		logger:     NoopLogger(),
		metrics:    sampler.NoopMetrics{},
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
