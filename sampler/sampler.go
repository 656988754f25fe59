// Package sampler implements periodic capture of per-process memory
// snapshots with a bounded history and subscriber fan-out.
//
// A Sampler owns exactly one background goroutine. Start and Stop may be
// called repeatedly; Start while running is a no-op, and Stop blocks until
// the worker has fully exited, so no capture or callback delivery happens
// after Stop returns.
package sampler

import (
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hupe1980/procmem/internal/ring"
	"github.com/hupe1980/procmem/procfs"
	"github.com/hupe1980/procmem/region"
)

// DefaultInterval is used when Config.Interval is unset.
const DefaultInterval = time.Second

// Callback receives each new snapshot. Callbacks run on the sampler
// goroutine while the sampler's internal lock is held: they must return
// promptly and must not call back into the same sampler (Start, Stop,
// OnSnapshot, or any query); doing so deadlocks.
type Callback func(region.ProcessSnapshot)

// Config configures a Sampler.
type Config struct {
	// PID is the process whose memory map is sampled.
	PID int

	// Interval is the delay between ticks. Zero means DefaultInterval.
	Interval time.Duration

	// UseSmaps enables per-region stats enrichment on every tick.
	UseSmaps bool

	// MaxSnapshots bounds the history; the oldest snapshot is evicted when
	// the bound is reached. Zero means unbounded.
	MaxSnapshots int

	// FS is the proc mount to read from. The zero value means the default
	// mount.
	FS procfs.FS

	// Logger receives tick warnings and callback panic reports. Nil
	// discards all output.
	Logger *slog.Logger

	// Metrics receives operational counters. Nil disables collection.
	Metrics Metrics
}

// Sampler periodically captures snapshots of one process's memory map into
// a bounded FIFO history and delivers each new snapshot to registered
// callbacks in registration order.
//
// A Sampler must not be copied after first use.
type Sampler struct {
	cfg     Config
	logger  *slog.Logger
	metrics Metrics

	// lifecycle serializes Start/Stop; the worker never takes it.
	lifecycle sync.Mutex
	running   atomic.Bool
	stopCh    chan struct{}
	doneCh    chan struct{}

	// mu guards history and callbacks. It is held for the duration of
	// append-with-eviction plus callback fan-out, and briefly by queries.
	mu        sync.Mutex
	history   *ring.Buffer[region.ProcessSnapshot]
	callbacks []Callback
}

// New returns a stopped Sampler for the given configuration.
func New(cfg Config) *Sampler {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.FS == (procfs.FS{}) {
		cfg.FS = procfs.Default()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = NoopMetrics{}
	}
	return &Sampler{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
		history: ring.New[region.ProcessSnapshot](cfg.MaxSnapshots),
	}
}

// Start launches the background worker. Calling Start while the sampler is
// already running has no effect; no second worker is spawned. A stopped
// sampler may be started again and keeps its accumulated history.
func (s *Sampler) Start() {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	if s.running.Load() {
		return
	}

	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.running.Store(true)

	go s.loop(s.stopCh, s.doneCh)
}

// Stop signals the worker and blocks until it has fully exited. After Stop
// returns, no further capture or callback delivery occurs. Stopping a
// sampler that is not running is a no-op.
//
// Stop must not be called from a snapshot callback.
func (s *Sampler) Stop() {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	if !s.running.Load() {
		return
	}

	close(s.stopCh)
	<-s.doneCh
	s.running.Store(false)
}

// IsRunning reports whether the background worker is active.
func (s *Sampler) IsRunning() bool {
	return s.running.Load()
}

// OnSnapshot registers a callback for every subsequent snapshot. Callbacks
// may be registered before or while the sampler is running; each snapshot
// is delivered to every registered callback exactly once, in registration
// order. See Callback for the re-entrancy contract.
func (s *Sampler) OnSnapshot(cb Callback) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callbacks = append(s.callbacks, cb)
}

// SnapshotCount returns the number of snapshots currently held. Safe to
// call concurrently with a running worker.
func (s *Sampler) SnapshotCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Len()
}

// Snapshots returns a copy of the history in capture order, oldest first.
func (s *Sampler) Snapshots() []region.ProcessSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Items()
}

// Latest returns the most recent snapshot, if any.
func (s *Sampler) Latest() (region.ProcessSnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Latest()
}

// loop is the worker body. It captures immediately, then once per interval
// until stopCh closes. Stop latency is bounded by the select wake-up, not
// by the configured interval.
func (s *Sampler) loop(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	timer := time.NewTimer(s.cfg.Interval)
	defer timer.Stop()

	for {
		s.publish(s.capture())

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(s.cfg.Interval)

		select {
		case <-stopCh:
			return
		case <-timer.C:
		}
	}
}

// capture produces one snapshot. A tick whose maps listing is unavailable
// (process exited, permissions flapped) yields an empty-region snapshot so
// the loop keeps running and retries next tick.
func (s *Sampler) capture() region.ProcessSnapshot {
	started := time.Now()
	snap := region.ProcessSnapshot{
		PID:         s.cfg.PID,
		TimestampMS: time.Now().UnixMilli(),
	}

	regions, err := s.cfg.FS.Maps(s.cfg.PID)
	if err != nil {
		s.logger.Warn("maps listing unavailable, empty tick",
			"pid", s.cfg.PID,
			"error", err,
		)
		s.metrics.RecordTick(time.Since(started), 0, err)
		return snap
	}
	snap.Regions = regions

	if s.cfg.UseSmaps {
		if err := s.cfg.FS.Enrich(s.cfg.PID, snap.Regions); err != nil {
			s.logger.Warn("smaps enrichment failed",
				"pid", s.cfg.PID,
				"error", err,
			)
		}
	}

	s.metrics.RecordTick(time.Since(started), len(snap.Regions), nil)
	return snap
}

// publish appends the snapshot to the history (evicting the oldest entry at
// capacity) and fans it out to all callbacks, all under the same lock.
func (s *Sampler) publish(snap region.ProcessSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history.Push(snap)

	for i, cb := range s.callbacks {
		s.invoke(i, cb, snap)
	}
}

// invoke runs one callback behind a panic boundary. A panicking subscriber
// is reported and counted, and delivery continues with the next callback.
func (s *Sampler) invoke(index int, cb Callback, snap region.ProcessSnapshot) {
	defer func() {
		if r := recover(); r != nil {
			s.metrics.RecordCallbackPanic()
			s.logger.Error("snapshot callback panicked",
				"pid", s.cfg.PID,
				"callback", index,
				"panic", r,
			)
		}
	}()
	cb(snap)
}
