package locator_test

import (
	"fmt"
	"sync"
	"testing"

	"nyxdb-client/internal/locator"
	"nyxdb-client/internal/region"

	"github.com/stretchr/testify/require"
)

var (
	srvA = region.ServerID{Host: "a", Port: 1, StartTime: 1}
	srvB = region.ServerID{Host: "b", Port: 2, StartTime: 1}
	srvC = region.ServerID{Host: "c", Port: 3, StartTime: 1}
)

func primaryAt(table region.TableName, start, end string, server region.ServerID) region.Locations {
	return region.NewLocations(&region.Location{
		Region: region.NewDescriptor(table, []byte(start), []byte(end)),
		Server: server,
	})
}

// seedTable caches the canonical three-region layout [,b) [b,m) [m,).
func seedTable(c *locator.LocationCache, table region.TableName) {
	c.Insert(primaryAt(table, "", "b", srvA))
	c.Insert(primaryAt(table, "b", "m", srvB))
	c.Insert(primaryAt(table, "m", "", srvC))
}

func TestLookupCurrent(t *testing.T) {
	cache := locator.NewLocationCache(nil)
	users := region.ParseTableName("users")
	seedTable(cache, users)

	locs, ok := cache.Lookup(users, []byte("c"), locator.Current)
	require.True(t, ok)
	require.Equal(t, []byte("b"), locs.Default().Region.StartKey)
	require.Equal(t, srvB, locs.Default().Server)

	locs, ok = cache.Lookup(users, nil, locator.Current)
	require.True(t, ok)
	require.Equal(t, srvA, locs.Default().Server)

	locs, ok = cache.Lookup(users, []byte("zzz"), locator.Current)
	require.True(t, ok)
	require.Equal(t, srvC, locs.Default().Server)

	// Boundary rows belong to the region starting there.
	locs, ok = cache.Lookup(users, []byte("m"), locator.Current)
	require.True(t, ok)
	require.Equal(t, srvC, locs.Default().Server)
}

func TestLookupCurrentMissInGap(t *testing.T) {
	cache := locator.NewLocationCache(nil)
	users := region.ParseTableName("users")
	cache.Insert(primaryAt(users, "b", "m", srvB))

	if _, ok := cache.Lookup(users, []byte("a"), locator.Current); ok {
		t.Fatalf("row before the only cached range must miss")
	}
	if _, ok := cache.Lookup(users, []byte("m"), locator.Current); ok {
		t.Fatalf("row at the exclusive end must miss")
	}
}

func TestLookupBefore(t *testing.T) {
	cache := locator.NewLocationCache(nil)
	users := region.ParseTableName("users")
	seedTable(cache, users)

	locs, ok := cache.Lookup(users, []byte("m"), locator.Before)
	require.True(t, ok)
	require.Equal(t, srvB, locs.Default().Server)

	// No region ends exactly at "c": hard miss.
	if _, ok := cache.Lookup(users, []byte("c"), locator.Before); ok {
		t.Fatalf("inexact end boundary must miss")
	}

	// Empty row addresses the last region.
	locs, ok = cache.Lookup(users, nil, locator.Before)
	require.True(t, ok)
	require.Equal(t, srvC, locs.Default().Server)
}

func TestLookupAfter(t *testing.T) {
	cache := locator.NewLocationCache(nil)
	users := region.ParseTableName("users")
	seedTable(cache, users)

	locs, ok := cache.Lookup(users, []byte("b"), locator.After)
	require.True(t, ok)
	require.Equal(t, srvB, locs.Default().Server)

	if _, ok := cache.Lookup(users, []byte("c"), locator.After); ok {
		t.Fatalf("inexact start boundary must miss")
	}
}

func TestInsertMergesReplicaSlots(t *testing.T) {
	cache := locator.NewLocationCache(nil)
	users := region.ParseTableName("users")
	desc := region.NewDescriptor(users, []byte("b"), []byte("m"))

	cache.Insert(region.NewLocations(&region.Location{Region: desc, Server: srvA}))
	merged := cache.Insert(region.NewLocations(&region.Location{Region: desc.WithReplicaID(1), Server: srvB}))

	require.Equal(t, 2, merged.Len())
	require.Equal(t, srvA, merged.Default().Server)
	require.Equal(t, srvB, merged.Get(1).Server)

	locs, ok := cache.Lookup(users, []byte("c"), locator.Current)
	require.True(t, ok)
	require.Equal(t, 2, locs.Len())
}

func TestInsertEvictsStaleOverlaps(t *testing.T) {
	cache := locator.NewLocationCache(nil)
	users := region.ParseTableName("users")

	// Pre-split parent region covers [b, z).
	cache.Insert(primaryAt(users, "b", "z", srvA))

	// The split lands both daughters; the right one overlaps the parent.
	cache.Insert(primaryAt(users, "m", "z", srvC))
	cache.Insert(primaryAt(users, "b", "m", srvB))

	locs, ok := cache.Lookup(users, []byte("c"), locator.Current)
	require.True(t, ok)
	require.Equal(t, srvB, locs.Default().Server)
	require.Equal(t, []byte("m"), locs.Default().Region.EndKey)

	locs, ok = cache.Lookup(users, []byte("x"), locator.Current)
	require.True(t, ok)
	require.Equal(t, srvC, locs.Default().Server)
	require.Equal(t, 2, cache.EntryCount(users))
}

func TestInsertMergeEvictsDaughters(t *testing.T) {
	cache := locator.NewLocationCache(nil)
	users := region.ParseTableName("users")

	cache.Insert(primaryAt(users, "b", "m", srvB))
	cache.Insert(primaryAt(users, "m", "z", srvC))

	// Regions merged back into [b, z): the old right daughter must go.
	cache.Insert(primaryAt(users, "b", "z", srvA))

	require.Equal(t, 1, cache.EntryCount(users))
	locs, ok := cache.Lookup(users, []byte("x"), locator.Current)
	require.True(t, ok)
	require.Equal(t, srvA, locs.Default().Server)
}

func TestInvalidateServerIsSelective(t *testing.T) {
	cache := locator.NewLocationCache(nil)
	users := region.ParseTableName("users")
	seedTable(cache, users)

	removed := cache.InvalidateServer(srvB)
	require.Equal(t, 1, removed)

	if _, ok := cache.Lookup(users, []byte("c"), locator.Current); ok {
		t.Fatalf("entry for invalidated server must miss")
	}
	_, ok := cache.Lookup(users, []byte("a"), locator.Current)
	require.True(t, ok)
	_, ok = cache.Lookup(users, []byte("x"), locator.Current)
	require.True(t, ok)
}

func TestInvalidateServerAcrossTables(t *testing.T) {
	cache := locator.NewLocationCache(nil)
	users := region.ParseTableName("users")
	orders := region.ParseTableName("orders")
	cache.Insert(primaryAt(users, "", "", srvA))
	cache.Insert(primaryAt(orders, "", "", srvA))

	require.Equal(t, 2, cache.InvalidateServer(srvA))
	require.Equal(t, 0, cache.EntryCount(users))
	require.Equal(t, 0, cache.EntryCount(orders))
}

func TestInvalidateServerClearsReplicaSlotOnly(t *testing.T) {
	cache := locator.NewLocationCache(nil)
	users := region.ParseTableName("users")
	desc := region.NewDescriptor(users, []byte("b"), []byte("m"))
	cache.Insert(region.NewLocations(
		&region.Location{Region: desc, Server: srvA},
		&region.Location{Region: desc.WithReplicaID(1), Server: srvB},
	))

	cache.InvalidateServer(srvB)

	locs, ok := cache.Lookup(users, []byte("c"), locator.Current)
	require.True(t, ok)
	require.Equal(t, srvA, locs.Default().Server)
	require.Nil(t, locs.Get(1))
	require.Equal(t, 2, locs.Len())
}

func TestInvalidateTableScoped(t *testing.T) {
	cache := locator.NewLocationCache(nil)
	users := region.ParseTableName("users")
	orders := region.ParseTableName("orders")
	seedTable(cache, users)
	seedTable(cache, orders)

	cache.InvalidateTable(users)

	require.Equal(t, 0, cache.EntryCount(users))
	require.Equal(t, 3, cache.EntryCount(orders))
}

func TestInvalidateAll(t *testing.T) {
	cache := locator.NewLocationCache(nil)
	users := region.ParseTableName("users")
	orders := region.ParseTableName("orders")
	seedTable(cache, users)
	seedTable(cache, orders)

	cache.InvalidateAll()

	require.Equal(t, 0, cache.EntryCount(users))
	require.Equal(t, 0, cache.EntryCount(orders))
}

func TestInvalidateRegionByName(t *testing.T) {
	cache := locator.NewLocationCache(nil)
	users := region.ParseTableName("users")
	seedTable(cache, users)

	desc := region.NewDescriptor(users, []byte("b"), []byte("m"))
	require.True(t, cache.InvalidateRegion(desc))
	require.False(t, cache.InvalidateRegion(desc))
	require.Equal(t, 2, cache.EntryCount(users))
}

func TestLookupMissWithoutPrimarySlot(t *testing.T) {
	cache := locator.NewLocationCache(nil)
	users := region.ParseTableName("users")
	desc := region.NewDescriptor(users, []byte("b"), []byte("m"))
	cache.Insert(region.NewLocations(&region.Location{Region: desc.WithReplicaID(1), Server: srvB}))

	if _, ok := cache.Lookup(users, []byte("c"), locator.Current); ok {
		t.Fatalf("entry without a primary slot must read as a miss")
	}
}

func TestConcurrentLookupsAndInserts(t *testing.T) {
	cache := locator.NewLocationCache(nil)
	users := region.ParseTableName("users")

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				start := fmt.Sprintf("k%03d", i)
				end := fmt.Sprintf("k%03d", i+1)
				cache.Insert(primaryAt(users, start, end, srvA))
			}
		}(g)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				cache.Lookup(users, []byte(fmt.Sprintf("k%03d", i)), locator.Current)
			}
		}()
	}
	wg.Wait()

	locs, ok := cache.Lookup(users, []byte("k100"), locator.Current)
	require.True(t, ok)
	require.Equal(t, srvA, locs.Default().Server)
}
