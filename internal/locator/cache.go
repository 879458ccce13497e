package locator

import (
	"bytes"
	"sync"
	"sync/atomic"

	"github.com/google/btree"
	"go.uber.org/zap"

	"nyxdb-client/internal/region"
)

const cacheTreeDegree = 16

// cacheEntry is one cached region: the region's start key and the replica
// location set last resolved for it. Entries are immutable; updates replace
// the entry.
type cacheEntry struct {
	startKey []byte
	locs     region.Locations
}

// endKey returns the region's end key, taken from any populated slot (all
// replicas of a region share the same range).
func (e *cacheEntry) endKey() []byte {
	for _, l := range e.locs.All() {
		if l != nil {
			return l.Region.EndKey
		}
	}
	return nil
}

func entryLess(a, b *cacheEntry) bool {
	return bytes.Compare(a.startKey, b.startKey) < 0
}

// tableCache is the ordered startKey → locations map for one table. Readers
// load an immutable btree snapshot and traverse it without locking; writers
// serialize on mu, clone the snapshot, mutate the clone, and publish it.
type tableCache struct {
	mu   sync.Mutex
	tree atomic.Pointer[btree.BTreeG[*cacheEntry]]
}

func newTableCache() *tableCache {
	tc := &tableCache{}
	tc.tree.Store(btree.NewG(cacheTreeDegree, entryLess))
	return tc
}

func (tc *tableCache) snapshot() *btree.BTreeG[*cacheEntry] {
	return tc.tree.Load()
}

// LocationCache caches region locations per table. All operations are safe
// for concurrent use; lookups never block inserts or invalidations.
type LocationCache struct {
	mu     sync.RWMutex
	tables map[region.TableName]*tableCache

	servers *serverIndex
	logger  *zap.Logger
}

// NewLocationCache creates an empty cache. A nil logger disables logging.
func NewLocationCache(logger *zap.Logger) *LocationCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocationCache{
		tables:  make(map[region.TableName]*tableCache),
		servers: newServerIndex(),
		logger:  logger,
	}
}

func (c *LocationCache) table(name region.TableName) (*tableCache, bool) {
	c.mu.RLock()
	tc, ok := c.tables[name]
	c.mu.RUnlock()
	return tc, ok
}

func (c *LocationCache) tableOrCreate(name region.TableName) *tableCache {
	if tc, ok := c.table(name); ok {
		return tc
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if tc, ok := c.tables[name]; ok {
		return tc
	}
	tc := newTableCache()
	c.tables[name] = tc
	return tc
}

// Lookup finds the cached locations for row under the given direction. A hit
// requires the primary slot to be populated; an entry whose primary was
// invalidated reads as a miss so the next access re-resolves it.
func (c *LocationCache) Lookup(table region.TableName, row []byte, dir Direction) (region.Locations, bool) {
	tc, ok := c.table(table)
	if !ok {
		return region.Locations{}, false
	}
	tree := tc.snapshot()
	var entry *cacheEntry
	switch dir {
	case Current:
		entry = seekContaining(tree, row)
	case Before:
		entry = seekEndingAt(tree, row)
	case After:
		entry = seekStartingAt(tree, row)
	}
	if entry == nil || entry.locs.Default() == nil {
		return region.Locations{}, false
	}
	return entry.locs, true
}

// seekContaining returns the entry whose range contains row.
func seekContaining(tree *btree.BTreeG[*cacheEntry], row []byte) *cacheEntry {
	var candidate *cacheEntry
	tree.DescendLessOrEqual(&cacheEntry{startKey: row}, func(e *cacheEntry) bool {
		candidate = e
		return false
	})
	if candidate == nil {
		return nil
	}
	end := candidate.endKey()
	if len(end) > 0 && bytes.Compare(row, end) >= 0 {
		return nil
	}
	return candidate
}

// seekEndingAt returns the entry whose end key equals row exactly. An empty
// row addresses the last region of the table. Anything else is a miss.
func seekEndingAt(tree *btree.BTreeG[*cacheEntry], row []byte) *cacheEntry {
	if len(row) == 0 {
		last, ok := tree.Max()
		if ok && len(last.endKey()) == 0 {
			return last
		}
		return nil
	}
	var candidate *cacheEntry
	tree.DescendLessOrEqual(&cacheEntry{startKey: row}, func(e *cacheEntry) bool {
		if bytes.Equal(e.startKey, row) {
			// The region starting at row is the one after the boundary;
			// keep descending to its predecessor.
			return true
		}
		candidate = e
		return false
	})
	if candidate == nil || !bytes.Equal(candidate.endKey(), row) {
		return nil
	}
	return candidate
}

// seekStartingAt returns the entry whose start key equals row exactly.
func seekStartingAt(tree *btree.BTreeG[*cacheEntry], row []byte) *cacheEntry {
	entry, ok := tree.Get(&cacheEntry{startKey: row})
	if !ok {
		return nil
	}
	return entry
}

// Insert publishes freshly resolved locations. An existing entry with the
// same start key and range is merged slot-wise (new slots win); an entry
// whose range changed is replaced. Cached entries overlapping the new range
// are stale remnants of a split or merge and are evicted. Returns the
// locations now cached for the region.
func (c *LocationCache) Insert(locs region.Locations) region.Locations {
	anchor := firstPopulated(locs)
	if anchor == nil {
		return locs
	}
	table := anchor.Region.Table
	start := anchor.Region.StartKey
	end := anchor.Region.EndKey
	key := entryKey{table: table, start: string(start)}

	tc := c.tableOrCreate(table)
	tc.mu.Lock()
	defer tc.mu.Unlock()

	next := tc.snapshot().Clone()
	probe := &cacheEntry{startKey: start}

	merged := locs
	if existing, ok := next.Get(probe); ok {
		if bytes.Equal(existing.endKey(), end) {
			merged = existing.locs.Merge(locs)
		}
		c.servers.forget(key, existing.locs)
	}

	for _, stale := range overlappingEntries(next, start, end) {
		next.Delete(stale)
		staleKey := entryKey{table: table, start: string(stale.startKey)}
		c.servers.forget(staleKey, stale.locs)
		c.logger.Debug("evicted overlapping region",
			zap.String("table", table.String()),
			zap.Binary("startKey", stale.startKey))
	}

	next.ReplaceOrInsert(&cacheEntry{startKey: start, locs: merged})
	c.servers.record(key, merged)
	tc.tree.Store(next)
	return merged
}

func firstPopulated(locs region.Locations) *region.Location {
	for _, l := range locs.All() {
		if l != nil {
			return l
		}
	}
	return nil
}

// overlappingEntries collects entries whose range intersects [start, end),
// excluding the entry at start itself.
func overlappingEntries(tree *btree.BTreeG[*cacheEntry], start, end []byte) []*cacheEntry {
	var stale []*cacheEntry
	probe := &cacheEntry{startKey: start}
	tree.DescendLessOrEqual(probe, func(e *cacheEntry) bool {
		if bytes.Equal(e.startKey, start) {
			return true
		}
		prevEnd := e.endKey()
		if len(prevEnd) == 0 || bytes.Compare(prevEnd, start) > 0 {
			stale = append(stale, e)
			return true
		}
		return false
	})
	tree.AscendGreaterOrEqual(probe, func(e *cacheEntry) bool {
		if bytes.Equal(e.startKey, start) {
			return true
		}
		if len(end) > 0 && bytes.Compare(e.startKey, end) >= 0 {
			return false
		}
		stale = append(stale, e)
		return true
	})
	return stale
}

// InvalidateRegion removes the entry cached for the descriptor's region.
// Returns whether an entry was removed.
func (c *LocationCache) InvalidateRegion(desc region.Descriptor) bool {
	tc, ok := c.table(desc.Table)
	if !ok {
		return false
	}
	tc.mu.Lock()
	defer tc.mu.Unlock()

	next := tc.snapshot().Clone()
	entry, ok := next.Get(&cacheEntry{startKey: desc.StartKey})
	if !ok {
		return false
	}
	match := false
	for _, l := range entry.locs.All() {
		if l != nil && l.Region.Name() == desc.Name() {
			match = true
			break
		}
	}
	if !match {
		return false
	}
	next.Delete(entry)
	c.servers.forget(entryKey{table: desc.Table, start: string(desc.StartKey)}, entry.locs)
	tc.tree.Store(next)
	return true
}

// InvalidateServer forgets every routing slot through the given node, across
// all tables. Entries left with no populated slot are dropped entirely.
// Returns the number of entries touched.
func (c *LocationCache) InvalidateServer(server region.ServerID) int {
	keys := c.servers.take(server)
	touched := 0
	for _, key := range keys {
		tc, ok := c.table(key.table)
		if !ok {
			continue
		}
		tc.mu.Lock()
		next := tc.snapshot().Clone()
		entry, ok := next.Get(&cacheEntry{startKey: []byte(key.start)})
		if !ok {
			tc.mu.Unlock()
			continue
		}
		cleared, changed := entry.locs.Without(server)
		if !changed {
			tc.mu.Unlock()
			continue
		}
		if cleared.IsEmpty() {
			next.Delete(entry)
		} else {
			next.ReplaceOrInsert(&cacheEntry{startKey: entry.startKey, locs: cleared})
		}
		tc.tree.Store(next)
		tc.mu.Unlock()
		touched++
	}
	if touched > 0 {
		c.logger.Debug("invalidated cached locations for server",
			zap.String("server", server.String()),
			zap.Int("entries", touched))
	}
	return touched
}

// InvalidateTable drops the whole cache of one table.
func (c *LocationCache) InvalidateTable(table region.TableName) {
	c.mu.Lock()
	delete(c.tables, table)
	c.mu.Unlock()
	c.servers.dropTable(table)
}

// InvalidateAll drops every table's cache.
func (c *LocationCache) InvalidateAll() {
	c.mu.Lock()
	c.tables = make(map[region.TableName]*tableCache)
	c.mu.Unlock()
	c.servers.reset()
}

// EntryCount reports how many regions are cached for table.
func (c *LocationCache) EntryCount(table region.TableName) int {
	tc, ok := c.table(table)
	if !ok {
		return 0
	}
	return tc.snapshot().Len()
}
