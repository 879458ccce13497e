package region

import (
	"bytes"
	"encoding/hex"
	"fmt"
)

// DefaultReplicaID is the replica id of the primary (writable) copy of a
// region. Replica ids above it denote read replicas.
const DefaultReplicaID = 0

// Descriptor describes one region replica: the table it belongs to, the
// half-open key range [StartKey, EndKey) it covers, and its replica id. An
// empty StartKey means no lower bound, an empty EndKey no upper bound.
// Descriptors are immutable once constructed.
type Descriptor struct {
	Table     TableName
	StartKey  []byte
	EndKey    []byte
	ReplicaID int
	name      string
}

// NewDescriptor builds a Descriptor for the primary replica.
func NewDescriptor(table TableName, startKey, endKey []byte) Descriptor {
	return NewReplicaDescriptor(table, startKey, endKey, DefaultReplicaID)
}

// NewReplicaDescriptor builds a Descriptor for the given replica id.
func NewReplicaDescriptor(table TableName, startKey, endKey []byte, replicaID int) Descriptor {
	d := Descriptor{
		Table:     table,
		StartKey:  append([]byte(nil), startKey...),
		EndKey:    append([]byte(nil), endKey...),
		ReplicaID: replicaID,
	}
	d.name = encodeRegionName(d)
	return d
}

// WithReplicaID derives the descriptor of another replica of the same region.
func (d Descriptor) WithReplicaID(replicaID int) Descriptor {
	return NewReplicaDescriptor(d.Table, d.StartKey, d.EndKey, replicaID)
}

// Name returns the encoded region name, unique per (table, startKey, replica).
func (d Descriptor) Name() string {
	if d.name == "" {
		return encodeRegionName(d)
	}
	return d.name
}

func encodeRegionName(d Descriptor) string {
	return fmt.Sprintf("%s,%s,%d", d.Table, hex.EncodeToString(d.StartKey), d.ReplicaID)
}

// ContainsRow reports whether row falls inside the descriptor's range.
func (d Descriptor) ContainsRow(row []byte) bool {
	if len(d.StartKey) > 0 && bytes.Compare(row, d.StartKey) < 0 {
		return false
	}
	if len(d.EndKey) > 0 && bytes.Compare(row, d.EndKey) >= 0 {
		return false
	}
	return true
}

// IsLast reports whether the region is the last one of its table.
func (d Descriptor) IsLast() bool {
	return len(d.EndKey) == 0
}

func (d Descriptor) String() string {
	return fmt.Sprintf("%s[%q,%q)#%d", d.Table, d.StartKey, d.EndKey, d.ReplicaID)
}
