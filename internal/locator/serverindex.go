package locator

import (
	"sync"

	"nyxdb-client/internal/region"
)

// entryKey addresses one cache entry: the owning table plus the entry's
// start key.
type entryKey struct {
	table region.TableName
	start string
}

// serverIndex maps a node to the cache entries routing through it, so
// invalidating a dead node never walks every table's cache.
type serverIndex struct {
	mu       sync.Mutex
	byServer map[region.ServerID]map[entryKey]struct{}
}

func newServerIndex() *serverIndex {
	return &serverIndex{byServer: make(map[region.ServerID]map[entryKey]struct{})}
}

// record registers every populated slot of locs under key.
func (idx *serverIndex) record(key entryKey, locs region.Locations) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for _, l := range locs.All() {
		if l == nil {
			continue
		}
		set, ok := idx.byServer[l.Server]
		if !ok {
			set = make(map[entryKey]struct{})
			idx.byServer[l.Server] = set
		}
		set[key] = struct{}{}
	}
}

// forget drops key from every server that locs routed through.
func (idx *serverIndex) forget(key entryKey, locs region.Locations) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for _, l := range locs.All() {
		if l == nil {
			continue
		}
		if set, ok := idx.byServer[l.Server]; ok {
			delete(set, key)
			if len(set) == 0 {
				delete(idx.byServer, l.Server)
			}
		}
	}
}

// take removes and returns the entries currently recorded for server.
func (idx *serverIndex) take(server region.ServerID) []entryKey {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	set, ok := idx.byServer[server]
	if !ok {
		return nil
	}
	delete(idx.byServer, server)
	keys := make([]entryKey, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	return keys
}

// dropTable forgets every entry of the given table.
func (idx *serverIndex) dropTable(table region.TableName) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for server, set := range idx.byServer {
		for k := range set {
			if k.table == table {
				delete(set, k)
			}
		}
		if len(set) == 0 {
			delete(idx.byServer, server)
		}
	}
}

// reset clears the whole index.
func (idx *serverIndex) reset() {
	idx.mu.Lock()
	idx.byServer = make(map[region.ServerID]map[entryKey]struct{})
	idx.mu.Unlock()
}
