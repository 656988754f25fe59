package procfs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/procmem/procfs"
)

func TestFS_PIDs(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"42", "1", "7", "self", "sys", "thread-self"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, name), 0o755))
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, "uptime"), []byte("1 1\n"), 0o644))

	fs := procfs.NewFS(root)
	pids, err := fs.PIDs()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 7, 42}, pids)
}

func TestFS_ProcessName(t *testing.T) {
	root := t.TempDir()
	writeProcFile(t, root, 42, "comm", "dbus-daemon\n")

	fs := procfs.NewFS(root)
	assert.Equal(t, "dbus-daemon", fs.ProcessName(42))
	assert.Equal(t, "unknown", fs.ProcessName(4242))
}

func TestFS_Alive(t *testing.T) {
	fs := procfs.Default()
	assert.True(t, fs.Alive(os.Getpid()))
	// Way above the default pid_max; cannot exist.
	assert.False(t, fs.Alive(1 << 30))
}

func TestDefaultFS_HostProcEnv(t *testing.T) {
	t.Setenv("HOST_PROC", "/host/proc")
	assert.Equal(t, "/host/proc", procfs.Default().Root())

	t.Setenv("HOST_PROC", "")
	assert.Equal(t, procfs.DefaultMountPoint, procfs.Default().Root())
}
