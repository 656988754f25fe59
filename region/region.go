// Package region defines the data model for per-process virtual memory
// mappings: a single mapped region, its semantic classification, and a
// point-in-time snapshot of all regions for one process.
//
// Values in this package are plain data. A [ProcessSnapshot] is built once
// by a capture operation and is never mutated afterwards; consumers that
// need to hold on to one can do so without copying.
package region

// Type classifies a memory region based on its pathname and permission
// flags.
type Type int

const (
	// Unknown is the fallback for regions no classification rule matched.
	Unknown Type = iota
	// Heap is the process heap ("[heap]").
	Heap
	// Stack is the main or a per-thread stack ("[stack]", "[stack:123]").
	Stack
	// Code is an executable mapping: a file-backed text segment or an
	// anonymous executable mapping (JIT).
	Code
	// SharedLib is a file-backed mapping whose path names a shared object.
	SharedLib
	// Vdso is the virtual dynamic shared object ("[vdso]").
	Vdso
	// Vvar is the kernel variable page ("[vvar]").
	Vvar
	// Vsyscall is the legacy vsyscall page ("[vsyscall]").
	Vsyscall
	// MappedFile is a non-executable file-backed mapping.
	MappedFile
	// Anonymous is a non-executable mapping with no backing path.
	Anonymous
)

// String returns the wire name of the region type (e.g. "shared_lib").
func (t Type) String() string {
	switch t {
	case Heap:
		return "heap"
	case Stack:
		return "stack"
	case Code:
		return "code"
	case SharedLib:
		return "shared_lib"
	case Vdso:
		return "vdso"
	case Vvar:
		return "vvar"
	case Vsyscall:
		return "vsyscall"
	case MappedFile:
		return "mapped_file"
	case Anonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// Stats holds the detailed per-region statistics read from the detail
// listing (smaps). All values are kilobytes.
type Stats struct {
	SizeKB         uint64
	RSSKB          uint64
	PSSKB          uint64
	SharedCleanKB  uint64
	SharedDirtyKB  uint64
	PrivateCleanKB uint64
	PrivateDirtyKB uint64
	SwapKB         uint64
}

// MemoryRegion is a single contiguous virtual memory mapping of a process,
// as parsed from one line of the maps listing. End is always >= Start.
//
// Stats is only meaningful when HasStats is true; it stays zero-valued for
// regions that were never enriched.
type MemoryRegion struct {
	Start       uint64
	End         uint64
	Permissions string
	Offset      uint64
	Device      string
	Inode       uint64
	Pathname    string

	Type Type

	Stats    Stats
	HasStats bool
}

// Size returns the extent of the region in bytes.
func (r MemoryRegion) Size() uint64 {
	return r.End - r.Start
}

// SizeKB returns the extent of the region in kilobytes.
func (r MemoryRegion) SizeKB() uint64 {
	return r.Size() / 1024
}
