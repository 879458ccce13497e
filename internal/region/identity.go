package region

import (
	"fmt"
	"strconv"
	"strings"
)

// ServerID identifies a cluster node. StartTime is the node's start timestamp
// in unix milliseconds; it disambiguates a node restarted on the same
// host:port. ServerID is a value type and compares with ==.
type ServerID struct {
	Host      string
	Port      int
	StartTime int64
}

// Addr returns the dialable host:port of the node.
func (s ServerID) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func (s ServerID) String() string {
	return fmt.Sprintf("%s,%d,%d", s.Host, s.Port, s.StartTime)
}

// IsZero reports whether s carries no identity.
func (s ServerID) IsZero() bool {
	return s.Host == "" && s.Port == 0 && s.StartTime == 0
}

// ParseServerID parses the "host,port,startTime" form produced by String.
func ParseServerID(v string) (ServerID, error) {
	parts := strings.Split(v, ",")
	if len(parts) != 3 {
		return ServerID{}, fmt.Errorf("malformed server identity %q", v)
	}
	port, err := strconv.Atoi(parts[1])
	if err != nil {
		return ServerID{}, fmt.Errorf("malformed server port in %q: %w", v, err)
	}
	start, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return ServerID{}, fmt.Errorf("malformed server start time in %q: %w", v, err)
	}
	return ServerID{Host: parts[0], Port: port, StartTime: start}, nil
}

// TableName names a table within a namespace. The zero Namespace means the
// default namespace.
type TableName struct {
	Namespace string
	Qualifier string
}

// DefaultNamespace is used when a table name carries no explicit namespace.
const DefaultNamespace = "default"

// MetaTableName is the table holding every other region's location.
var MetaTableName = TableName{Namespace: "system", Qualifier: "meta"}

// NewTableName builds a TableName, applying the default namespace.
func NewTableName(namespace, qualifier string) TableName {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return TableName{Namespace: namespace, Qualifier: qualifier}
}

// ParseTableName splits "namespace:qualifier"; a bare name lands in the
// default namespace.
func ParseTableName(v string) TableName {
	if idx := strings.IndexByte(v, ':'); idx >= 0 {
		return NewTableName(v[:idx], v[idx+1:])
	}
	return NewTableName("", v)
}

// IsMeta reports whether t is the meta table.
func (t TableName) IsMeta() bool {
	return t == MetaTableName
}

func (t TableName) String() string {
	if t.Namespace == "" || t.Namespace == DefaultNamespace {
		return t.Qualifier
	}
	return t.Namespace + ":" + t.Qualifier
}
