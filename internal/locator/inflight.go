package locator

import (
	"golang.org/x/sync/singleflight"

	"nyxdb-client/internal/observability/metrics"
	"nyxdb-client/internal/region"
)

// singleflightResult is the shared outcome delivered to every waiter of one
// coalesced lookup.
type singleflightResult = singleflight.Result

// inFlightTracker coalesces concurrent lookups for the same cache key onto a
// single meta scan. The key is removed once the scan settles, so a later
// call starts a fresh one; waiters that give up early leave the scan and the
// other waiters untouched.
type inFlightTracker struct {
	group   singleflight.Group
	metrics *metrics.LocatorCollector
}

// fetch attaches to the pending scan for key, starting one with fn if none
// is outstanding. The returned channel delivers the shared outcome.
func (t *inFlightTracker) fetch(key string, fn func() (region.Locations, error)) <-chan singleflight.Result {
	return t.group.DoChan(key, func() (interface{}, error) {
		t.metrics.FetchStarted()
		defer t.metrics.FetchFinished()
		return fn()
	})
}

// lookupKey builds the coalescing key for one (table, row, direction)
// lookup. Forward-resolving directions share a key class; reverse lookups
// get their own so a backward boundary probe never piggybacks on a forward
// one for the same row.
func lookupKey(table region.TableName, row []byte, dir Direction) string {
	class := byte('f')
	if dir == Before {
		class = 'b'
	}
	return table.String() + "\x00" + string(class) + "\x00" + string(row)
}
