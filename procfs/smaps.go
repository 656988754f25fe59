package procfs

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/hupe1980/procmem/region"
)

// Smaps reads and parses the smaps detail listing for the given PID. The
// returned regions carry populated stats. It returns ErrDetailUnavailable
// (wrapping the underlying I/O error) when the listing cannot be read.
func (fs FS) Smaps(pid int) ([]region.MemoryRegion, error) {
	data, err := os.ReadFile(fs.pidPath(pid, "smaps"))
	if err != nil {
		return nil, fmt.Errorf("read smaps for pid %d: %w: %w", pid, ErrDetailUnavailable, err)
	}
	return ParseSmaps(string(data)), nil
}

// ParseSmaps parses raw smaps-format text. A line starting with a hex digit
// that parses as a maps line opens a new block; the detail lines that
// follow, up to the next header, populate that block's stats. Unrecognized
// detail keys are ignored, so newer kernels with extra keys parse cleanly.
func ParseSmaps(raw string) []region.MemoryRegion {
	var regions []region.MemoryRegion
	cur := -1

	for _, line := range strings.Split(raw, "\n") {
		if line == "" {
			continue
		}
		if isHexDigit(line[0]) {
			if r, ok := parseMapsLine(line); ok {
				r.HasStats = true
				regions = append(regions, r)
				cur = len(regions) - 1
				continue
			}
			// Not a header after all. Detail keys may start with a hex
			// letter (Anonymous, AnonHugePages), so the current block
			// stays open and the line falls through like any other
			// unrecognized key.
		}
		if cur >= 0 {
			applyDetailLine(line, &regions[cur])
		}
	}

	return regions
}

// Enrich merges smaps stats into regions already parsed from the maps
// listing, matching by start address. Regions without a matching detail
// block are left exactly as given. If the smaps listing cannot be read, the
// error is returned and regions stay completely untouched.
//
// Start addresses are assumed unique within one listing at one instant.
func (fs FS) Enrich(pid int, regions []region.MemoryRegion) error {
	detail, err := fs.Smaps(pid)
	if err != nil {
		return err
	}

	lookup := make(map[uint64]int, len(detail))
	for i := range detail {
		lookup[detail[i].Start] = i
	}

	for i := range regions {
		if j, ok := lookup[regions[i].Start]; ok {
			regions[i].Stats = detail[j].Stats
			regions[i].HasStats = true
		}
	}

	return nil
}

// applyDetailLine applies a single "<Key>: <value> kB" line to a region.
// Unknown keys and unparsable values are ignored.
func applyDetailLine(line string, r *region.MemoryRegion) {
	idx := strings.IndexByte(line, ':')
	if idx < 0 {
		return
	}
	key := line[:idx]
	fields := strings.Fields(line[idx+1:])
	if len(fields) == 0 {
		return
	}
	value, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return
	}

	switch key {
	case "Size":
		r.Stats.SizeKB = value
	case "Rss":
		r.Stats.RSSKB = value
	case "Pss":
		r.Stats.PSSKB = value
	case "Shared_Clean":
		r.Stats.SharedCleanKB = value
	case "Shared_Dirty":
		r.Stats.SharedDirtyKB = value
	case "Private_Clean":
		r.Stats.PrivateCleanKB = value
	case "Private_Dirty":
		r.Stats.PrivateDirtyKB = value
	case "Swap":
		r.Stats.SwapKB = value
	}
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
