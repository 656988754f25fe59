package procmem

import (
	"time"

	"github.com/hupe1980/procmem/procfs"
	"github.com/hupe1980/procmem/region"
	"github.com/hupe1980/procmem/sampler"
)

// Collector ties together listing access, enrichment, periodic sampling,
// and output encoding for a single process.
//
// A Collector owns its sampler and must not be copied.
type Collector struct {
	pid     int
	opts    options
	fs      procfs.FS
	sampler *sampler.Sampler
}

// New creates a Collector for the given PID.
func New(pid int, optFns ...Option) (*Collector, error) {
	if pid <= 0 {
		return nil, ErrInvalidPID
	}

	o := applyOptions(optFns)

	fs := procfs.Default()
	if o.procRoot != "" {
		fs = procfs.NewFS(o.procRoot)
	}

	c := &Collector{
		pid:  pid,
		opts: o,
		fs:   fs,
	}
	c.sampler = sampler.New(sampler.Config{
		PID:          pid,
		Interval:     o.interval,
		UseSmaps:     o.useSmaps,
		MaxSnapshots: o.maxSnapshots,
		FS:           fs,
		Logger:       o.logger.Logger,
		Metrics:      o.metrics,
	})
	return c, nil
}

// PID returns the process ID being monitored.
func (c *Collector) PID() int {
	return c.pid
}

// CollectOnce takes a single snapshot immediately. It returns an error
// satisfying errors.Is(err, ErrSourceUnavailable) when the maps listing
// cannot be read; an enrichment failure is reported to the logger but does
// not fail the snapshot.
func (c *Collector) CollectOnce() (*region.ProcessSnapshot, error) {
	snap := &region.ProcessSnapshot{
		PID:         c.pid,
		TimestampMS: time.Now().UnixMilli(),
	}

	regions, err := c.fs.Maps(c.pid)
	if err != nil {
		c.opts.logger.LogCollect(c.pid, 0, err)
		return nil, err
	}
	snap.Regions = regions

	if c.opts.useSmaps {
		err := c.fs.Enrich(c.pid, snap.Regions)
		c.opts.logger.LogEnrich(c.pid, err)
	}

	c.opts.logger.LogCollect(c.pid, len(snap.Regions), nil)
	return snap, nil
}

// ToJSON serializes a snapshot, indented or compact per WithPrettyJSON.
func (c *Collector) ToJSON(snap region.ProcessSnapshot) (string, error) {
	var (
		data []byte
		err  error
	)
	if c.opts.prettyJSON {
		data, err = snap.MarshalIndentJSON()
	} else {
		data, err = snap.MarshalJSON()
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// StartSampling begins periodic background collection at the configured
// interval. It is idempotent while sampling is active.
func (c *Collector) StartSampling() {
	c.sampler.Start()
}

// StopSampling stops the background worker and blocks until it has exited.
// It must not be called from a snapshot callback.
func (c *Collector) StopSampling() {
	c.sampler.Stop()
}

// IsSampling reports whether periodic sampling is currently active.
func (c *Collector) IsSampling() bool {
	return c.sampler.IsRunning()
}

// OnSnapshot registers a callback invoked with each new snapshot. See
// sampler.Callback for the re-entrancy contract.
func (c *Collector) OnSnapshot(cb sampler.Callback) {
	c.sampler.OnSnapshot(cb)
}

// SnapshotCount returns the number of snapshots currently held in history.
func (c *Collector) SnapshotCount() int {
	return c.sampler.SnapshotCount()
}

// Snapshots returns a copy of the sampling history in capture order.
func (c *Collector) Snapshots() []region.ProcessSnapshot {
	return c.sampler.Snapshots()
}

// LatestSnapshot returns the most recent snapshot, if any.
func (c *Collector) LatestSnapshot() (region.ProcessSnapshot, bool) {
	return c.sampler.Latest()
}
