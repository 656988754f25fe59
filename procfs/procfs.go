// Package procfs reads and parses the kernel-exposed per-process memory
// mapping listings (maps and smaps) into [region.MemoryRegion] values.
//
// The package separates pure parsing ([ParseMaps], [ParseSmaps]), which never
// fails as a whole and silently skips malformed lines, from listing access
// ([FS.Maps], [FS.Smaps]), which reports a distinct error when the listing
// cannot be opened at all (process gone, permission denied).
//
// An [FS] is rooted at a proc mount point so tests can run against a fixture
// tree and containerized callers can point at the host mount.
package procfs

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
)

// DefaultMountPoint is the conventional location of the proc filesystem.
const DefaultMountPoint = "/proc"

var (
	// ErrSourceUnavailable reports that the maps listing of a process could
	// not be opened at all. It is distinct from per-line parse failures,
	// which are skipped silently.
	ErrSourceUnavailable = errors.New("memory map source unavailable")

	// ErrDetailUnavailable reports that the smaps detail listing could not
	// be read. Enrichment that fails with it leaves the caller's regions
	// untouched.
	ErrDetailUnavailable = errors.New("memory map detail listing unavailable")
)

// FS provides access to the per-process listings below a proc mount point.
// The zero value is not usable; construct one with NewFS or Default.
type FS struct {
	root string
}

// NewFS returns an FS rooted at the given mount point. An empty root falls
// back to DefaultMountPoint.
func NewFS(root string) FS {
	if root == "" {
		root = DefaultMountPoint
	}
	return FS{root: root}
}

// Default returns an FS rooted at the HOST_PROC environment variable if set,
// otherwise at DefaultMountPoint. HOST_PROC is how containerized collectors
// reach the host's proc mount.
func Default() FS {
	return NewFS(os.Getenv("HOST_PROC"))
}

// Root returns the mount point this FS reads from.
func (fs FS) Root() string {
	return fs.root
}

func (fs FS) pidPath(pid int, name string) string {
	return filepath.Join(fs.root, strconv.Itoa(pid), name)
}
