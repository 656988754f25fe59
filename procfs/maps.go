package procfs

import (
	"fmt"
	"os"
	"strings"

	"github.com/hupe1980/procmem/region"
)

// Maps reads and parses the maps listing for the given PID. It returns
// ErrSourceUnavailable (wrapping the underlying I/O error) when the listing
// cannot be opened, e.g. because the process exited or access was denied.
func (fs FS) Maps(pid int) ([]region.MemoryRegion, error) {
	data, err := os.ReadFile(fs.pidPath(pid, "maps"))
	if err != nil {
		return nil, fmt.Errorf("read maps for pid %d: %w: %w", pid, ErrSourceUnavailable, err)
	}
	return ParseMaps(string(data)), nil
}

// ParseMaps parses raw maps-format text into memory regions. Each non-empty
// line is parsed independently; lines with fewer than the six mandatory
// fields are skipped. ParseMaps never fails as a whole.
func ParseMaps(raw string) []region.MemoryRegion {
	var regions []region.MemoryRegion
	for _, line := range strings.Split(raw, "\n") {
		if line == "" {
			continue
		}
		if r, ok := parseMapsLine(line); ok {
			regions = append(regions, r)
		}
	}
	return regions
}

// parseMapsLine parses a single maps line:
//
//	7f2c5c000000-7f2c5c021000 rw-p 00000000 00:00 0   [heap]
//
// The first six fields are mandatory; the pathname is everything after the
// fifth whitespace run and may contain internal whitespace.
func parseMapsLine(line string) (region.MemoryRegion, bool) {
	var (
		start, end, offset, inode uint64
		perms, dev                string
	)
	n, err := fmt.Sscanf(line, "%x-%x %s %x %s %d", &start, &end, &perms, &offset, &dev, &inode)
	if err != nil || n < 6 || end < start {
		return region.MemoryRegion{}, false
	}

	r := region.MemoryRegion{
		Start:       start,
		End:         end,
		Permissions: perms,
		Offset:      offset,
		Device:      dev,
		Inode:       inode,
		Pathname:    pathnameField(line),
	}
	r.Type = Classify(r.Pathname, r.Permissions)
	return r, true
}

// pathnameField returns the text after the fifth whitespace run, with
// trailing whitespace trimmed. It returns "" for anonymous mappings.
func pathnameField(line string) string {
	runs := 0
	inSpace := false
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case ' ', '\t':
			if !inSpace {
				runs++
				inSpace = true
			}
		default:
			if inSpace && runs >= 5 {
				return strings.TrimRight(line[i:], " \t\r\n")
			}
			inSpace = false
		}
	}
	return ""
}

// Classify maps a pathname and permission string to a region type. The rule
// order is part of the contract: bracketed pseudo-labels first, then
// file-backed paths, then anonymous mappings.
func Classify(pathname, permissions string) region.Type {
	switch {
	case pathname == "[heap]":
		return region.Heap
	case strings.Contains(pathname, "[stack"):
		return region.Stack
	case pathname == "[vdso]":
		return region.Vdso
	case pathname == "[vvar]":
		return region.Vvar
	case pathname == "[vsyscall]":
		return region.Vsyscall
	}

	executable := len(permissions) >= 3 && permissions[2] == 'x'

	if strings.HasPrefix(pathname, "/") {
		if strings.Contains(pathname, ".so") {
			return region.SharedLib
		}
		if executable {
			return region.Code
		}
		return region.MappedFile
	}

	if pathname == "" {
		if executable {
			return region.Code
		}
		return region.Anonymous
	}

	return region.Unknown
}
