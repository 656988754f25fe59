package region

// ProcessSnapshot is the full set of memory regions of one process at one
// instant, plus the capture timestamp. Regions keep the order of the
// underlying listing; they are never re-sorted.
type ProcessSnapshot struct {
	PID         int
	TimestampMS int64
	Regions     []MemoryRegion
}

// TotalRSSKB returns the summed resident set size across all regions in
// kilobytes. The value is only meaningful when regions carry stats; without
// enrichment it is zero.
func (s ProcessSnapshot) TotalRSSKB() uint64 {
	var total uint64
	for _, r := range s.Regions {
		total += r.Stats.RSSKB
	}
	return total
}

// TotalVirtualKB returns the summed virtual extent of all regions in
// kilobytes.
func (s ProcessSnapshot) TotalVirtualKB() uint64 {
	var total uint64
	for _, r := range s.Regions {
		total += r.Size()
	}
	return total / 1024
}
