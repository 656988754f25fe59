package region

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// regionEnvelope fixes the wire layout of a region entry. Addresses are
// rendered as 0x-prefixed lowercase hex; pathname is omitted when empty and
// the stats keys are present only when the region was enriched.
type regionEnvelope struct {
	Start       string `json:"start"`
	End         string `json:"end"`
	Type        string `json:"type"`
	Permissions string `json:"permissions"`
	SizeKB      uint64 `json:"size_kb"`
	Pathname    string `json:"pathname,omitempty"`

	RSSKB          *uint64 `json:"rss_kb,omitempty"`
	PSSKB          *uint64 `json:"pss_kb,omitempty"`
	SharedCleanKB  *uint64 `json:"shared_clean_kb,omitempty"`
	SharedDirtyKB  *uint64 `json:"shared_dirty_kb,omitempty"`
	PrivateCleanKB *uint64 `json:"private_clean_kb,omitempty"`
	PrivateDirtyKB *uint64 `json:"private_dirty_kb,omitempty"`
	SwapKB         *uint64 `json:"swap_kb,omitempty"`
}

type snapshotEnvelope struct {
	ProcessID      int              `json:"process_id"`
	TimestampMS    int64            `json:"timestamp_ms"`
	TotalRSSKB     uint64           `json:"total_resident_kb"`
	TotalVirtualKB uint64           `json:"total_virtual_kb"`
	RegionCount    int              `json:"region_count"`
	Regions        []regionEnvelope `json:"regions"`
}

func (r MemoryRegion) envelope() regionEnvelope {
	env := regionEnvelope{
		Start:       fmt.Sprintf("0x%x", r.Start),
		End:         fmt.Sprintf("0x%x", r.End),
		Type:        r.Type.String(),
		Permissions: r.Permissions,
		SizeKB:      r.SizeKB(),
		Pathname:    r.Pathname,
	}
	if r.HasStats {
		s := r.Stats
		env.RSSKB = &s.RSSKB
		env.PSSKB = &s.PSSKB
		env.SharedCleanKB = &s.SharedCleanKB
		env.SharedDirtyKB = &s.SharedDirtyKB
		env.PrivateCleanKB = &s.PrivateCleanKB
		env.PrivateDirtyKB = &s.PrivateDirtyKB
		env.SwapKB = &s.SwapKB
	}
	return env
}

func (s ProcessSnapshot) envelope() snapshotEnvelope {
	env := snapshotEnvelope{
		ProcessID:      s.PID,
		TimestampMS:    s.TimestampMS,
		TotalRSSKB:     s.TotalRSSKB(),
		TotalVirtualKB: s.TotalVirtualKB(),
		RegionCount:    len(s.Regions),
		Regions:        make([]regionEnvelope, 0, len(s.Regions)),
	}
	for _, r := range s.Regions {
		env.Regions = append(env.Regions, r.envelope())
	}
	return env
}

// MarshalJSON renders the region in its wire layout.
func (r MemoryRegion) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.envelope())
}

// MarshalJSON renders the snapshot in its wire layout.
func (s ProcessSnapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.envelope())
}

// MarshalIndentJSON renders the snapshot in its wire layout with two-space
// indentation for human consumption.
func (s ProcessSnapshot) MarshalIndentJSON() ([]byte, error) {
	return json.MarshalIndent(s.envelope(), "", "  ")
}
