package region

import (
	"fmt"
	"strings"
)

// Location is one resolved replica: a region descriptor and the node serving
// it. Immutable.
type Location struct {
	Region Descriptor
	Server ServerID
}

func (l Location) String() string {
	return fmt.Sprintf("%s@%s", l.Region.Name(), l.Server)
}

// Locations is the ordered set of replica locations for one region. The slot
// index equals the replica id, slot 0 is the primary. A nil slot records a
// replica whose node is currently unknown; slots are kept so the length
// reflects the last known replica count. Locations is immutable and replaced
// wholesale on update so cache readers always see a consistent snapshot.
type Locations struct {
	slots []*Location
}

// NewLocations builds a location set from the given replicas, placing each at
// the slot of its replica id. Gaps stay nil.
func NewLocations(locs ...*Location) Locations {
	max := -1
	for _, l := range locs {
		if l != nil && l.Region.ReplicaID > max {
			max = l.Region.ReplicaID
		}
	}
	if max < 0 {
		return Locations{}
	}
	slots := make([]*Location, max+1)
	for _, l := range locs {
		if l != nil {
			slots[l.Region.ReplicaID] = l
		}
	}
	return Locations{slots: slots}
}

// Default returns the primary location, or nil if unresolved.
func (ls Locations) Default() *Location {
	return ls.Get(DefaultReplicaID)
}

// Get returns the location at the given replica id, or nil.
func (ls Locations) Get(replicaID int) *Location {
	if replicaID < 0 || replicaID >= len(ls.slots) {
		return nil
	}
	return ls.slots[replicaID]
}

// Len returns the number of replica slots, nil slots included.
func (ls Locations) Len() int {
	return len(ls.slots)
}

// IsEmpty reports whether no slot holds a location.
func (ls Locations) IsEmpty() bool {
	for _, l := range ls.slots {
		if l != nil {
			return false
		}
	}
	return true
}

// All returns the slots in replica order. Callers must not mutate the result.
func (ls Locations) All() []*Location {
	return ls.slots
}

// RegionNames returns the encoded names of the populated slots in replica
// order.
func (ls Locations) RegionNames() []string {
	names := make([]string, 0, len(ls.slots))
	for _, l := range ls.slots {
		if l != nil {
			names = append(names, l.Region.Name())
		}
	}
	return names
}

// HasServer reports whether any slot routes through the given node.
func (ls Locations) HasServer(server ServerID) bool {
	for _, l := range ls.slots {
		if l != nil && l.Server == server {
			return true
		}
	}
	return false
}

// Without returns a copy with every slot served by the given node cleared.
// The second result reports whether anything changed.
func (ls Locations) Without(server ServerID) (Locations, bool) {
	changed := false
	for _, l := range ls.slots {
		if l != nil && l.Server == server {
			changed = true
			break
		}
	}
	if !changed {
		return ls, false
	}
	slots := make([]*Location, len(ls.slots))
	copy(slots, ls.slots)
	for i, l := range slots {
		if l != nil && l.Server == server {
			slots[i] = nil
		}
	}
	return Locations{slots: slots}, true
}

// Merge overlays other onto ls: populated slots from other win, existing
// slots survive where other has gaps. Used when a lazy replica resolution
// fills slots the first resolution left empty.
func (ls Locations) Merge(other Locations) Locations {
	if other.Len() == 0 {
		return ls
	}
	if ls.Len() == 0 {
		return other
	}
	n := len(ls.slots)
	if len(other.slots) > n {
		n = len(other.slots)
	}
	slots := make([]*Location, n)
	copy(slots, ls.slots)
	for i, l := range other.slots {
		if l != nil {
			slots[i] = l
		}
	}
	return Locations{slots: slots}
}

func (ls Locations) String() string {
	parts := make([]string, 0, len(ls.slots))
	for i, l := range ls.slots {
		if l == nil {
			parts = append(parts, fmt.Sprintf("%d:<nil>", i))
			continue
		}
		parts = append(parts, fmt.Sprintf("%d:%s", i, l))
	}
	return "[" + strings.Join(parts, " ") + "]"
}
