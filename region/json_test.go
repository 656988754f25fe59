package region_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/procmem/region"
)

func TestRegionJSON(t *testing.T) {
	r := region.MemoryRegion{
		Start:       0x7f84ac400000,
		End:         0x7f84ac5b8000,
		Permissions: "r-xp",
		Pathname:    "/usr/lib/libc.so",
		Type:        region.SharedLib,
		Stats:       region.Stats{RSSKB: 1020, PSSKB: 116, SharedCleanKB: 1020},
		HasStats:    true,
	}

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))

	assert.Equal(t, "0x7f84ac400000", got["start"])
	assert.Equal(t, "0x7f84ac5b8000", got["end"])
	assert.Equal(t, "shared_lib", got["type"])
	assert.Equal(t, "r-xp", got["permissions"])
	assert.Equal(t, "/usr/lib/libc.so", got["pathname"])
	assert.Equal(t, float64(1020), got["rss_kb"])
	assert.Equal(t, float64(116), got["pss_kb"])
	assert.Equal(t, float64(0), got["swap_kb"])
}

func TestRegionJSON_OmitsPathnameAndStats(t *testing.T) {
	r := region.MemoryRegion{
		Start:       0x1000,
		End:         0x2000,
		Permissions: "rw-p",
		Type:        region.Anonymous,
	}

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))

	_, hasPathname := got["pathname"]
	assert.False(t, hasPathname, "empty pathname must be omitted")
	_, hasRSS := got["rss_kb"]
	assert.False(t, hasRSS, "stats keys must be omitted without enrichment")
	assert.Equal(t, "0x1000", got["start"])
}

func TestSnapshotJSON(t *testing.T) {
	snap := region.ProcessSnapshot{
		PID:         42,
		TimestampMS: 1700000000000,
		Regions: []region.MemoryRegion{
			{Start: 0x1000, End: 0x3000, Permissions: "rw-p", Type: region.Heap, Pathname: "[heap]",
				Stats: region.Stats{RSSKB: 8}, HasStats: true},
			{Start: 0x4000, End: 0x8000, Permissions: "rw-p", Type: region.Anonymous},
		},
	}

	data, err := json.Marshal(snap)
	require.NoError(t, err)

	var got struct {
		ProcessID      int              `json:"process_id"`
		TimestampMS    int64            `json:"timestamp_ms"`
		TotalRSSKB     uint64           `json:"total_resident_kb"`
		TotalVirtualKB uint64           `json:"total_virtual_kb"`
		RegionCount    int              `json:"region_count"`
		Regions        []map[string]any `json:"regions"`
	}
	require.NoError(t, json.Unmarshal(data, &got))

	assert.Equal(t, 42, got.ProcessID)
	assert.Equal(t, int64(1700000000000), got.TimestampMS)
	assert.Equal(t, uint64(8), got.TotalRSSKB)
	assert.Equal(t, uint64(24), got.TotalVirtualKB)
	assert.Equal(t, 2, got.RegionCount)
	require.Len(t, got.Regions, 2)
	assert.Equal(t, "heap", got.Regions[0]["type"])

	// Stable key layout: summary fields come before the regions array.
	raw := string(data)
	assert.Less(t, strings.Index(raw, `"process_id"`), strings.Index(raw, `"regions"`))
	assert.Less(t, strings.Index(raw, `"total_resident_kb"`), strings.Index(raw, `"region_count"`))
}

func TestSnapshotMarshalIndentJSON(t *testing.T) {
	snap := region.ProcessSnapshot{PID: 1}
	data, err := snap.MarshalIndentJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"process_id\": 1")
}
