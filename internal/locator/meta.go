package locator

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"nyxdb-client/internal/region"
	"nyxdb-client/internal/registry"
)

// MetaResolver bootstraps the meta region's own location. The meta region's
// address moves rarely, so it is resolved through the coordinator registry
// directly and cached in an atomic reference rather than going through the
// table cache. Concurrent refreshes are coalesced; the fetch runs on its own
// deadline so one caller giving up does not abort it for the rest.
type MetaResolver struct {
	registry     registry.CoordinatorRegistry
	client       MetaClient
	fetchTimeout time.Duration
	logger       *zap.Logger

	cached atomic.Pointer[region.Locations]
	group  singleflight.Group
}

// NewMetaResolver builds a resolver over the given registry and RPC client.
func NewMetaResolver(reg registry.CoordinatorRegistry, client MetaClient, fetchTimeout time.Duration, logger *zap.Logger) *MetaResolver {
	if fetchTimeout <= 0 {
		fetchTimeout = defaultFetchTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MetaResolver{
		registry:     reg,
		client:       client,
		fetchTimeout: fetchTimeout,
		logger:       logger,
	}
}

// Locate returns the meta region's replica locations, fetching them through
// the coordinator on a cold cache. ctx bounds only this caller's wait.
func (r *MetaResolver) Locate(ctx context.Context) (region.Locations, error) {
	// A cached value without a primary slot cannot serve meta scans, so it
	// counts as a miss and gets re-fetched.
	if cached := r.cached.Load(); cached != nil && cached.Default() != nil {
		return *cached, nil
	}

	ch := r.group.DoChan("meta", func() (interface{}, error) {
		return r.fetch()
	})

	select {
	case <-ctx.Done():
		return region.Locations{}, fmt.Errorf("%w: %w", ErrLocationTimeout, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return region.Locations{}, res.Err
		}
		return res.Val.(region.Locations), nil
	}
}

func (r *MetaResolver) fetch() (region.Locations, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.fetchTimeout)
	defer cancel()

	coord, err := r.registry.ActiveCoordinator(ctx)
	if err != nil {
		return region.Locations{}, fmt.Errorf("%w: %w", ErrCoordinatorUnavailable, err)
	}

	locs, err := r.client.LocateMetaRegion(ctx, coord)
	if err != nil {
		return region.Locations{}, fmt.Errorf("%w: locate meta region via %s: %w", ErrResolutionFailed, coord, err)
	}
	if locs.Default() == nil {
		return region.Locations{}, fmt.Errorf("%w: coordinator %s reported no primary meta location", ErrResolutionFailed, coord)
	}

	r.cached.Store(&locs)
	r.logger.Debug("resolved meta region",
		zap.Int("replicas", locs.Len()),
		zap.String("primary", locs.Default().Server.String()))
	return locs, nil
}

// Cached returns the currently cached meta locations, if any.
func (r *MetaResolver) Cached() (region.Locations, bool) {
	cached := r.cached.Load()
	if cached == nil || cached.IsEmpty() {
		return region.Locations{}, false
	}
	return *cached, true
}

// ClearCache forgets the cached meta location.
func (r *MetaResolver) ClearCache() {
	r.cached.Store(nil)
}

// ClearServer forgets the replica slots served by the given node. The whole
// cached value is dropped when no slot survives. Returns whether anything
// changed.
func (r *MetaResolver) ClearServer(server region.ServerID) bool {
	for {
		cached := r.cached.Load()
		if cached == nil {
			return false
		}
		cleared, changed := cached.Without(server)
		if !changed {
			return false
		}
		var next *region.Locations
		if !cleared.IsEmpty() {
			next = &cleared
		}
		if r.cached.CompareAndSwap(cached, next) {
			return true
		}
	}
}
