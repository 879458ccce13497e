package region_test

import (
	"testing"

	"nyxdb-client/internal/region"

	"github.com/stretchr/testify/require"
)

func TestServerIDRoundTrip(t *testing.T) {
	sn := region.ServerID{Host: "10.0.0.1", Port: 19001, StartTime: 1700000000000}
	parsed, err := region.ParseServerID(sn.String())
	require.NoError(t, err)
	require.Equal(t, sn, parsed)

	if _, err := region.ParseServerID("10.0.0.1:19001"); err == nil {
		t.Fatalf("expected error for malformed identity")
	}
}

func TestServerIDEquality(t *testing.T) {
	a := region.ServerID{Host: "n1", Port: 1, StartTime: 100}
	b := region.ServerID{Host: "n1", Port: 1, StartTime: 100}
	restarted := region.ServerID{Host: "n1", Port: 1, StartTime: 200}
	require.Equal(t, a, b)
	require.NotEqual(t, a, restarted)
}

func TestParseTableName(t *testing.T) {
	require.Equal(t, region.TableName{Namespace: "default", Qualifier: "users"},
		region.ParseTableName("users"))
	require.Equal(t, region.TableName{Namespace: "system", Qualifier: "meta"},
		region.ParseTableName("system:meta"))
	require.True(t, region.ParseTableName("system:meta").IsMeta())
	require.False(t, region.ParseTableName("meta").IsMeta())
}

func TestDescriptorContainsRow(t *testing.T) {
	tbl := region.NewTableName("", "users")
	d := region.NewDescriptor(tbl, []byte("b"), []byte("m"))

	require.True(t, d.ContainsRow([]byte("b")))
	require.True(t, d.ContainsRow([]byte("c")))
	require.False(t, d.ContainsRow([]byte("m")))
	require.False(t, d.ContainsRow([]byte("a")))

	first := region.NewDescriptor(tbl, nil, []byte("b"))
	require.True(t, first.ContainsRow(nil))
	require.True(t, first.ContainsRow([]byte("a")))
	require.False(t, first.ContainsRow([]byte("b")))

	last := region.NewDescriptor(tbl, []byte("m"), nil)
	require.True(t, last.IsLast())
	require.True(t, last.ContainsRow([]byte("zzz")))
}

func TestDescriptorNamesByReplica(t *testing.T) {
	tbl := region.NewTableName("", "users")
	d := region.NewDescriptor(tbl, []byte("b"), []byte("m"))
	r1 := d.WithReplicaID(1)
	require.NotEqual(t, d.Name(), r1.Name())
	require.Equal(t, d.StartKey, r1.StartKey)
	require.Equal(t, 1, r1.ReplicaID)
}

func TestLocationsSlots(t *testing.T) {
	tbl := region.NewTableName("", "users")
	d := region.NewDescriptor(tbl, []byte("b"), []byte("m"))
	primary := &region.Location{Region: d, Server: region.ServerID{Host: "n1", Port: 1}}
	replica2 := &region.Location{Region: d.WithReplicaID(2), Server: region.ServerID{Host: "n3", Port: 3}}

	locs := region.NewLocations(primary, replica2)
	require.Equal(t, 3, locs.Len())
	require.Equal(t, primary, locs.Default())
	require.Nil(t, locs.Get(1))
	require.Equal(t, replica2, locs.Get(2))
	require.Nil(t, locs.Get(5))
	require.Equal(t, []string{d.Name(), d.WithReplicaID(2).Name()}, locs.RegionNames())
}

func TestLocationsWithout(t *testing.T) {
	tbl := region.NewTableName("", "users")
	d := region.NewDescriptor(tbl, []byte("b"), []byte("m"))
	n1 := region.ServerID{Host: "n1", Port: 1}
	n2 := region.ServerID{Host: "n2", Port: 2}
	locs := region.NewLocations(
		&region.Location{Region: d, Server: n1},
		&region.Location{Region: d.WithReplicaID(1), Server: n2},
	)

	cleared, changed := locs.Without(n1)
	require.True(t, changed)
	require.Nil(t, cleared.Default())
	require.NotNil(t, cleared.Get(1))
	// Original snapshot is untouched.
	require.NotNil(t, locs.Default())

	same, changed := locs.Without(region.ServerID{Host: "other", Port: 9})
	require.False(t, changed)
	require.Equal(t, locs, same)
}

func TestLocationsMerge(t *testing.T) {
	tbl := region.NewTableName("", "users")
	d := region.NewDescriptor(tbl, []byte("b"), []byte("m"))
	n1 := region.ServerID{Host: "n1", Port: 1}
	n2 := region.ServerID{Host: "n2", Port: 2}

	base := region.NewLocations(&region.Location{Region: d, Server: n1})
	update := region.NewLocations(&region.Location{Region: d.WithReplicaID(1), Server: n2})

	merged := base.Merge(update)
	require.Equal(t, 2, merged.Len())
	require.Equal(t, n1, merged.Default().Server)
	require.Equal(t, n2, merged.Get(1).Server)
}
