package procmem

import (
	"errors"

	"github.com/hupe1980/procmem/procfs"
)

var (
	// ErrInvalidPID is returned when a collector is constructed for a
	// non-positive PID.
	ErrInvalidPID = errors.New("pid must be positive")

	// ErrSourceUnavailable reports that the maps listing could not be
	// opened at all (process gone, permission denied). One-shot collection
	// returns it; a running sampler turns it into an empty-region tick.
	ErrSourceUnavailable = procfs.ErrSourceUnavailable

	// ErrDetailUnavailable reports that the smaps detail listing could not
	// be read. The base regions are left exactly as they were.
	ErrDetailUnavailable = procfs.ErrDetailUnavailable
)
