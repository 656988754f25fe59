// Package procmem collects per-process virtual memory mapping data from the
// kernel's maps and smaps listings, classifies each mapped region, and
// supports one-shot snapshots, system-wide scans, and periodic background
// sampling with a bounded history.
//
// # Quick Start
//
// One-shot snapshot of a single process:
//
//	c, _ := procmem.New(pid, procmem.WithSmaps())
//	snap, err := c.CollectOnce()
//	if err != nil {
//	    // errors.Is(err, procmem.ErrSourceUnavailable): process gone or
//	    // permission denied.
//	}
//	out, _ := c.ToJSON(*snap)
//
// Periodic sampling with a bounded history and subscriber callbacks:
//
//	c, _ := procmem.New(pid,
//	    procmem.WithInterval(500*time.Millisecond),
//	    procmem.WithMaxSnapshots(120),
//	)
//	c.OnSnapshot(func(s region.ProcessSnapshot) {
//	    fmt.Println(s.TotalRSSKB())
//	})
//	c.StartSampling()
//	// ... later ...
//	c.StopSampling() // blocks until the worker has exited
//
// System-wide scan:
//
//	report, err := procmem.ScanAll(ctx, procmem.WithSkipKernel())
//
// # Failure Model
//
// Parsing is partial-failure tolerant: malformed listing lines are skipped,
// never escalated. A listing that cannot be opened at all surfaces as
// [ErrSourceUnavailable] (one-shot) or as an empty-region tick (periodic
// sampling keeps running and retries). Detail enrichment that fails reports
// [ErrDetailUnavailable] and leaves the base regions untouched. A snapshot
// callback that panics is caught, reported, and never disturbs other
// subscribers or the sampling loop.
package procmem
