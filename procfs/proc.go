package procfs

import (
	"errors"
	"os"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// PIDs enumerates all numeric entries below the proc mount point, sorted
// ascending. Non-numeric entries (sysctl trees, self, thread-self) are
// skipped.
func (fs FS) PIDs() ([]int, error) {
	entries, err := os.ReadDir(fs.root)
	if err != nil {
		return nil, err
	}

	pids := make([]int, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		pid, err := strconv.Atoi(e.Name())
		if err != nil || pid <= 0 {
			continue
		}
		pids = append(pids, pid)
	}
	sort.Ints(pids)
	return pids, nil
}

// ProcessName reads the comm entry for the given PID. It returns "unknown"
// when the entry cannot be read.
func (fs FS) ProcessName(pid int) string {
	data, err := os.ReadFile(fs.pidPath(pid, "comm"))
	if err != nil {
		return "unknown"
	}
	name := strings.TrimRight(string(data), "\r\n")
	if name == "" {
		return "unknown"
	}
	return name
}

// Alive probes whether the process still exists using a null signal. EPERM
// means the process exists but belongs to another user, so it counts as
// alive. The probe asks the kernel directly, so it is only meaningful
// against the live proc mount, not a fixture tree.
func (fs FS) Alive(pid int) bool {
	err := unix.Kill(pid, 0)
	return err == nil || errors.Is(err, unix.EPERM)
}
