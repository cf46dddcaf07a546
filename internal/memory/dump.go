package memory

import (
	"fmt"
	"io"
	"sort"
)

// BlockInfo is the exportable view of one registered block, shaped for the
// debug endpoints.
type BlockInfo struct {
	Pointer   uintptr `json:"pointer"`
	Size      uintptr `json:"size"`
	Zone      string  `json:"zone"`
	Ownership string  `json:"ownership"`
	Secure    bool    `json:"secure"`
}

// Blocks returns a snapshot of every registered block, sorted by address.
func (m *Manager) Blocks() []BlockInfo {
	m.mu.Lock()
	infos := make([]BlockInfo, 0, len(m.blocks))
	for _, block := range m.blocks {
		infos = append(infos, BlockInfo{
			Pointer:   uintptr(block.ptr),
			Size:      block.size,
			Zone:      block.zone.String(),
			Ownership: block.ownership.String(),
			Secure:    block.isSecure,
		})
	}
	m.mu.Unlock()

	sort.Slice(infos, func(i, j int) bool { return infos[i].Pointer < infos[j].Pointer })
	return infos
}

// DumpState writes a human-readable dump of the statistics and every live
// block to w. The layout exists for debugging only; nothing should parse it.
func (m *Manager) DumpState(w io.Writer) {
	stats := m.Stats()

	m.mu.Lock()
	blocks := make([]*MemoryBlock, 0, len(m.blocks))
	for _, block := range m.blocks {
		blocks = append(blocks, block)
	}
	m.mu.Unlock()

	sort.Slice(blocks, func(i, j int) bool {
		return uintptr(blocks[i].ptr) < uintptr(blocks[j].ptr)
	})

	fmt.Fprintf(w, "=== FFI Memory State Dump ===\n")
	fmt.Fprintf(w, "Statistics:\n")
	fmt.Fprintf(w, "  Total allocations: %d\n", stats.TotalAllocations)
	fmt.Fprintf(w, "  Total frees: %d\n", stats.TotalFrees)
	fmt.Fprintf(w, "  Current allocations: %d\n", stats.CurrentAllocations)
	fmt.Fprintf(w, "  Peak allocations: %d\n", stats.PeakAllocations)
	fmt.Fprintf(w, "  Current bytes: %d\n", stats.CurrentBytes)
	fmt.Fprintf(w, "  Peak bytes: %d\n", stats.PeakBytes)
	fmt.Fprintf(w, "  Slices: %d, Strings: %d, Results: %d\n",
		stats.SliceCount, stats.StringCount, stats.ResultCount)

	fmt.Fprintf(w, "Registered blocks (%d):\n", len(blocks))
	for i, block := range blocks {
		secure := "no"
		if block.isSecure {
			secure = "yes"
		}
		fmt.Fprintf(w, "  Block %d: ptr=%#x, size=%d, zone=%s, ownership=%s, secure=%s\n",
			i, uintptr(block.ptr), block.size, block.zone, block.ownership, secure)
	}
	fmt.Fprintf(w, "=== End Memory State Dump ===\n")
}
