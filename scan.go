package procmem

import (
	"context"
	"runtime"
	"time"

	jsoniter "github.com/json-iterator/go"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/hupe1980/procmem/procfs"
	"github.com/hupe1980/procmem/region"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ProcessEntry is one successfully scanned process.
type ProcessEntry struct {
	PID      int                    `json:"pid"`
	Name     string                 `json:"name"`
	Snapshot region.ProcessSnapshot `json:"snapshot"`
}

// SkippedProcess is a process whose maps listing could not be read during a
// scan, typically for permission reasons.
type SkippedProcess struct {
	PID  int    `json:"pid"`
	Name string `json:"name"`
}

// ScanReport is the result of a system-wide scan: one snapshot per readable
// process, plus the processes that had to be skipped. Entries are ordered
// by PID.
type ScanReport struct {
	TimestampMS int64
	Processes   []ProcessEntry
	Skipped     []SkippedProcess
}

type scanEnvelope struct {
	TimestampMS  int64            `json:"timestamp_ms"`
	ProcessCount int              `json:"process_count"`
	Processes    []ProcessEntry   `json:"processes"`
	SkippedCount int              `json:"skipped_count"`
	Skipped      []SkippedProcess `json:"skipped_processes"`
}

func (r ScanReport) envelope() scanEnvelope {
	return scanEnvelope{
		TimestampMS:  r.TimestampMS,
		ProcessCount: len(r.Processes),
		Processes:    r.Processes,
		SkippedCount: len(r.Skipped),
		Skipped:      r.Skipped,
	}
}

// MarshalJSON renders the report in its wire layout.
func (r ScanReport) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.envelope())
}

// MarshalIndentJSON renders the report with two-space indentation.
func (r ScanReport) MarshalIndentJSON() ([]byte, error) {
	return json.MarshalIndent(r.envelope(), "", "  ")
}

// ScanAll snapshots every process on the system once. Processes whose maps
// listing cannot be read are reported as skipped rather than failing the
// scan. Reads run concurrently, bounded by WithScanConcurrency and
// optionally throttled by WithScanRateLimit; ctx cancellation aborts the
// scan.
func ScanAll(ctx context.Context, optFns ...Option) (*ScanReport, error) {
	o := applyOptions(optFns)

	fs := procfs.Default()
	if o.procRoot != "" {
		fs = procfs.NewFS(o.procRoot)
	}

	pids, err := fs.PIDs()
	if err != nil {
		o.logger.LogScan(0, 0, err)
		return nil, err
	}

	concurrency := o.scanConcurrency
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}
	var limiter *rate.Limiter
	if o.scanRate > 0 {
		limiter = rate.NewLimiter(o.scanRate, 1)
	}

	type slot struct {
		entry   *ProcessEntry
		skipped *SkippedProcess
	}
	slots := make([]slot, len(pids))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, pid := range pids {
		i, pid := i, pid
		g.Go(func() error {
			if limiter != nil {
				if err := limiter.Wait(ctx); err != nil {
					return err
				}
			}
			if err := ctx.Err(); err != nil {
				return err
			}

			snap := region.ProcessSnapshot{
				PID:         pid,
				TimestampMS: time.Now().UnixMilli(),
			}
			regions, err := fs.Maps(pid)
			if err != nil {
				slots[i].skipped = &SkippedProcess{PID: pid, Name: fs.ProcessName(pid)}
				return nil
			}
			if o.skipKernel && len(regions) == 0 {
				return nil
			}
			snap.Regions = regions

			if o.useSmaps {
				if err := fs.Enrich(pid, snap.Regions); err != nil {
					o.logger.LogEnrich(pid, err)
				}
			}

			slots[i].entry = &ProcessEntry{
				PID:      pid,
				Name:     fs.ProcessName(pid),
				Snapshot: snap,
			}
			o.logger.WithPID(pid).WithRegionCount(len(regions)).Debug("process scanned")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		o.logger.LogScan(0, 0, err)
		return nil, err
	}

	report := &ScanReport{TimestampMS: time.Now().UnixMilli()}
	for _, s := range slots {
		switch {
		case s.entry != nil:
			report.Processes = append(report.Processes, *s.entry)
		case s.skipped != nil:
			report.Skipped = append(report.Skipped, *s.skipped)
		}
	}

	o.logger.LogScan(len(report.Processes), len(report.Skipped), nil)
	return report, nil
}
