package sampler_test

import (
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/procmem/procfs"
	"github.com/hupe1980/procmem/region"
	"github.com/hupe1980/procmem/sampler"
)

const (
	testPID      = 42
	testInterval = 5 * time.Millisecond
	waitTimeout  = 5 * time.Second
)

const fixtureMaps = `55d0a8611000-55d0a8632000 rw-p 00000000 00:00 0                          [heap]
7f84ac400000-7f84ac5b8000 r-xp 00000000 08:02 2622227                    /usr/lib/x86_64-linux-gnu/libc-2.31.so
7ffc8f55e000-7ffc8f57f000 rw-p 00000000 00:00 0                          [stack]
`

func writeMaps(t *testing.T, root string, pid int, content string) {
	t.Helper()
	dir := filepath.Join(root, strconv.Itoa(pid))
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "maps"), []byte(content), 0o644))
}

func newFixtureFS(t *testing.T) procfs.FS {
	t.Helper()
	root := t.TempDir()
	writeMaps(t, root, testPID, fixtureMaps)
	return procfs.NewFS(root)
}

// recorder collects delivered snapshots; safe to poll from the test
// goroutine while the sampler delivers.
type recorder struct {
	mu    sync.Mutex
	snaps []region.ProcessSnapshot
}

func (r *recorder) callback(s region.ProcessSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, s)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.snaps)
}

func (r *recorder) all() []region.ProcessSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]region.ProcessSnapshot, len(r.snaps))
	copy(out, r.snaps)
	return out
}

func TestSampler_ProducesSnapshots(t *testing.T) {
	s := sampler.New(sampler.Config{
		PID:      testPID,
		Interval: testInterval,
		FS:       newFixtureFS(t),
	})

	s.Start()
	defer s.Stop()

	require.Eventually(t, func() bool { return s.SnapshotCount() >= 2 }, waitTimeout, time.Millisecond)
	assert.True(t, s.IsRunning())

	latest, ok := s.Latest()
	require.True(t, ok)
	assert.Equal(t, testPID, latest.PID)
	assert.Len(t, latest.Regions, 3)
	assert.Equal(t, region.Heap, latest.Regions[0].Type)

	s.Stop()
	assert.False(t, s.IsRunning())
}

func TestSampler_RingBufferEviction(t *testing.T) {
	rec := &recorder{}
	s := sampler.New(sampler.Config{
		PID:          testPID,
		Interval:     testInterval,
		MaxSnapshots: 3,
		FS:           newFixtureFS(t),
	})
	s.OnSnapshot(rec.callback)

	s.Start()
	require.Eventually(t, func() bool { return rec.count() >= 5 }, waitTimeout, time.Millisecond)
	s.Stop()

	delivered := rec.all()
	history := s.Snapshots()

	// Only the three newest snapshots survive, oldest first.
	require.Len(t, history, 3)
	assert.Equal(t, delivered[len(delivered)-3:], history)
	assert.Equal(t, 3, s.SnapshotCount())
}

func TestSampler_UnboundedHistory(t *testing.T) {
	rec := &recorder{}
	s := sampler.New(sampler.Config{
		PID:      testPID,
		Interval: testInterval,
		FS:       newFixtureFS(t),
	})
	s.OnSnapshot(rec.callback)

	s.Start()
	require.Eventually(t, func() bool { return rec.count() >= 5 }, waitTimeout, time.Millisecond)
	s.Stop()

	// Every delivered snapshot is retained, in capture order.
	assert.Equal(t, rec.all(), s.Snapshots())
	assert.GreaterOrEqual(t, s.SnapshotCount(), 5)
}

func TestSampler_StartIdempotent(t *testing.T) {
	s := sampler.New(sampler.Config{
		PID:      testPID,
		Interval: testInterval,
		FS:       newFixtureFS(t),
	})

	s.Start()
	s.Start() // no second worker
	require.Eventually(t, func() bool { return s.SnapshotCount() >= 2 }, waitTimeout, time.Millisecond)

	// A single Stop fully quiesces the sampler; a second worker would keep
	// appending past it.
	s.Stop()
	count := s.SnapshotCount()
	time.Sleep(5 * testInterval)
	assert.Equal(t, count, s.SnapshotCount())
	assert.False(t, s.IsRunning())
}

func TestSampler_StopCleanJoin(t *testing.T) {
	var started, finished atomic.Int64
	s := sampler.New(sampler.Config{
		PID:      testPID,
		Interval: testInterval,
		FS:       newFixtureFS(t),
	})
	s.OnSnapshot(func(region.ProcessSnapshot) {
		started.Add(1)
		time.Sleep(15 * time.Millisecond) // keep a tick mid-flight
		finished.Add(1)
	})

	s.Start()
	require.Eventually(t, func() bool { return started.Load() >= 1 }, waitTimeout, time.Millisecond)
	s.Stop()

	// Stop returned: the in-flight delivery completed and nothing runs on.
	assert.Equal(t, started.Load(), finished.Load())
	count := s.SnapshotCount()
	delivered := started.Load()
	time.Sleep(5 * testInterval)
	assert.Equal(t, count, s.SnapshotCount())
	assert.Equal(t, delivered, started.Load())
}

func TestSampler_CallbackIsolation(t *testing.T) {
	metrics := &sampler.BasicMetrics{}
	rec := &recorder{}
	s := sampler.New(sampler.Config{
		PID:      testPID,
		Interval: testInterval,
		FS:       newFixtureFS(t),
		Metrics:  metrics,
	})
	s.OnSnapshot(func(region.ProcessSnapshot) {
		panic("bad subscriber")
	})
	s.OnSnapshot(rec.callback)

	s.Start()
	require.Eventually(t, func() bool { return rec.count() >= 3 }, waitTimeout, time.Millisecond)
	s.Stop()

	// The second callback saw every snapshot, in order, despite the first
	// panicking on each delivery.
	history := s.Snapshots()
	assert.Equal(t, history, rec.all())
	assert.Equal(t, int64(len(history)), metrics.CallbackPanics.Load())
}

func TestSampler_EmptyTickWhenSourceUnavailable(t *testing.T) {
	root := t.TempDir() // no maps file at all
	metrics := &sampler.BasicMetrics{}
	s := sampler.New(sampler.Config{
		PID:      testPID,
		Interval: testInterval,
		FS:       procfs.NewFS(root),
		Metrics:  metrics,
	})

	s.Start()
	defer s.Stop()

	// The loop keeps producing empty snapshots instead of dying.
	require.Eventually(t, func() bool { return s.SnapshotCount() >= 2 }, waitTimeout, time.Millisecond)
	latest, ok := s.Latest()
	require.True(t, ok)
	assert.Equal(t, testPID, latest.PID)
	assert.Empty(t, latest.Regions)
	assert.Greater(t, metrics.TickErrors.Load(), int64(0))

	// Once the listing appears, the next tick picks it up.
	writeMaps(t, root, testPID, fixtureMaps)
	require.Eventually(t, func() bool {
		latest, ok := s.Latest()
		return ok && len(latest.Regions) == 3
	}, waitTimeout, time.Millisecond)
}

func TestSampler_SmapsEnrichment(t *testing.T) {
	root := t.TempDir()
	writeMaps(t, root, testPID, "55d0a8611000-55d0a8632000 rw-p 00000000 00:00 0  [heap]\n")
	smaps := "55d0a8611000-55d0a8632000 rw-p 00000000 00:00 0  [heap]\nRss:                  88 kB\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, strconv.Itoa(testPID), "smaps"), []byte(smaps), 0o644))

	s := sampler.New(sampler.Config{
		PID:      testPID,
		Interval: testInterval,
		UseSmaps: true,
		FS:       procfs.NewFS(root),
	})

	s.Start()
	require.Eventually(t, func() bool { return s.SnapshotCount() >= 1 }, waitTimeout, time.Millisecond)
	s.Stop()

	latest, ok := s.Latest()
	require.True(t, ok)
	require.Len(t, latest.Regions, 1)
	assert.True(t, latest.Regions[0].HasStats)
	assert.Equal(t, uint64(88), latest.Regions[0].Stats.RSSKB)
}

func TestSampler_Restart(t *testing.T) {
	s := sampler.New(sampler.Config{
		PID:      testPID,
		Interval: testInterval,
		FS:       newFixtureFS(t),
	})

	s.Start()
	require.Eventually(t, func() bool { return s.SnapshotCount() >= 1 }, waitTimeout, time.Millisecond)
	s.Stop()

	count := s.SnapshotCount()

	// History survives across restarts and keeps growing.
	s.Start()
	require.Eventually(t, func() bool { return s.SnapshotCount() > count }, waitTimeout, time.Millisecond)
	s.Stop()
}

func TestSampler_ConcurrentQueries(t *testing.T) {
	s := sampler.New(sampler.Config{
		PID:      testPID,
		Interval: time.Millisecond,
		FS:       newFixtureFS(t),
	})

	s.Start()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			deadline := time.Now().Add(50 * time.Millisecond)
			for time.Now().Before(deadline) {
				snaps := s.Snapshots()
				if latest, ok := s.Latest(); ok {
					// A reader never observes a torn snapshot.
					assert.Equal(t, testPID, latest.PID)
				}
				assert.LessOrEqual(t, len(snaps), s.SnapshotCount()+1)
			}
		}()
	}
	wg.Wait()

	s.Stop()
}
