// Package memory implements the zone-based allocation layer of the runtime:
// every allocation that crosses the FFI boundary is classified by a zone that
// decides how it is obtained and released, and is tracked in a per-pointer
// block registry that also records ownership transfer semantics.
package memory

import (
	"fmt"
	"strings"
)

// Zone classifies an allocation by management strategy. The zone is fixed
// when a block is created; the registry is the single source of truth for
// which strategy releases the block.
type Zone int32

const (
	// ZoneGC delegates to the collector hooks.
	ZoneGC Zone = iota
	// ZoneManual uses the plain heap and is released explicitly.
	ZoneManual
	// ZonePinned memory never moves and is aligned for foreign access.
	ZonePinned
	// ZoneStack holds short-lived transients; released like manual memory.
	ZoneStack
	// ZoneSecure memory is page-locked when possible and zeroed on free.
	ZoneSecure
)

const zoneCount = 5

var zoneNames = [zoneCount]string{"gc", "manual", "pinned", "stack", "secure"}

func (z Zone) String() string {
	if z < ZoneGC || z >= zoneCount {
		return fmt.Sprintf("zone(%d)", int32(z))
	}
	return zoneNames[z]
}

// ParseZone converts a configuration string into a Zone.
func ParseZone(s string) (Zone, error) {
	for i, name := range zoneNames {
		if strings.EqualFold(s, name) {
			return Zone(i), nil
		}
	}
	return ZoneManual, fmt.Errorf("unknown memory zone %q", s)
}

// valid reports whether z names a real zone.
func (z Zone) valid() bool { return z >= ZoneGC && z < zoneCount }
