// Package locator resolves which cluster node serves the region owning a row
// key, caching resolutions client-side so the meta service is only consulted
// on cold or invalidated entries.
package locator

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"nyxdb-client/internal/observability/metrics"
	"nyxdb-client/internal/observability/tracing"
	"nyxdb-client/internal/region"
	"nyxdb-client/internal/registry"
)

const defaultFetchTimeout = 10 * time.Second

// Options tunes a RegionLocator. The zero value is usable.
type Options struct {
	Logger  *zap.Logger
	Metrics *metrics.LocatorCollector
	// TracerProvider overrides the global provider; mainly for tests.
	TracerProvider trace.TracerProvider
	// FetchTimeout caps one background meta resolution. A caller's own
	// deadline only bounds how long that caller waits, never the fetch.
	FetchTimeout time.Duration
}

// RegionLocator is the routing facade: cache lookup first, then a coalesced
// meta resolution on a miss, populating the cache for everyone. Safe for
// concurrent use by any number of goroutines.
type RegionLocator struct {
	client MetaClient
	cache  *LocationCache
	meta   *MetaResolver

	inflight     inFlightTracker
	fetchTimeout time.Duration

	metrics *metrics.LocatorCollector
	tracer  trace.Tracer
	logger  *zap.Logger
}

// NewRegionLocator builds a locator over the given RPC client and
// coordinator registry.
func NewRegionLocator(client MetaClient, reg registry.CoordinatorRegistry, opts Options) *RegionLocator {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	fetchTimeout := opts.FetchTimeout
	if fetchTimeout <= 0 {
		fetchTimeout = defaultFetchTimeout
	}
	return &RegionLocator{
		client:       client,
		cache:        NewLocationCache(logger),
		meta:         NewMetaResolver(reg, client, fetchTimeout, logger),
		inflight:     inFlightTracker{metrics: opts.Metrics},
		fetchTimeout: fetchTimeout,
		metrics:      opts.Metrics,
		tracer:       tracing.Tracer(opts.TracerProvider),
		logger:       logger,
	}
}

// Cache exposes the underlying location cache. The operation dispatcher uses
// it for region-level invalidation between retries.
func (l *RegionLocator) Cache() *LocationCache {
	return l.cache
}

// GetRegionLocation resolves the primary location of the region owning row.
// timeout bounds this caller's wait, measured from call start; the
// resolution itself keeps running on expiry and still populates the cache.
func (l *RegionLocator) GetRegionLocation(ctx context.Context, table region.TableName, row []byte, dir Direction, timeout time.Duration) (*region.Location, error) {
	ctx, span := l.tracer.Start(ctx, "RegionLocator.getRegionLocation",
		trace.WithAttributes(
			tracing.NamespaceKey.String(table.Namespace),
			tracing.TableKey.String(table.Qualifier),
		))

	var loc *region.Location
	locs, err := l.locate(ctx, table, row, dir, timeout)
	if err == nil {
		loc = locs.Default()
		if loc == nil {
			err = fmt.Errorf("%w: no primary location for row %q in table %s", ErrResolutionFailed, row, table)
		}
	}
	if loc != nil {
		span.SetAttributes(
			tracing.RegionNamesKey.StringSlice([]string{loc.Region.Name()}),
			tracing.ServerKey.String(loc.Server.String()),
		)
	}
	l.recordOutcome(err)
	tracing.EndSpan(span, err)
	if err != nil {
		return nil, err
	}
	return loc, nil
}

// GetRegionLocations resolves every known replica slot of the region owning
// row, index equal to replica id with the primary at 0. When
// includeAllReplicas is false only the primary slot is guaranteed populated.
func (l *RegionLocator) GetRegionLocations(ctx context.Context, table region.TableName, row []byte, dir Direction, includeAllReplicas bool, timeout time.Duration) (region.Locations, error) {
	ctx, span := l.tracer.Start(ctx, "RegionLocator.getRegionLocations",
		trace.WithAttributes(
			tracing.NamespaceKey.String(table.Namespace),
			tracing.TableKey.String(table.Qualifier),
		))

	locs, err := l.locate(ctx, table, row, dir, timeout)
	if err == nil {
		span.SetAttributes(tracing.RegionNamesKey.StringSlice(locs.RegionNames()))
	}
	l.recordOutcome(err)
	tracing.EndSpan(span, err)
	if err != nil {
		return region.Locations{}, err
	}
	return locs, nil
}

// ClearCache drops every cached location, the meta region's included.
func (l *RegionLocator) ClearCache(ctx context.Context) {
	_, span := l.tracer.Start(ctx, "RegionLocator.clearCache")
	l.cache.InvalidateAll()
	l.meta.ClearCache()
	l.metrics.Invalidation(metrics.ScopeAll)
	l.logger.Debug("cleared location cache")
	tracing.EndSpan(span, nil)
}

// ClearCacheByServer forgets every cached location routed through the given
// node, across all tables and replica slots. Called when a node is detected
// dead.
func (l *RegionLocator) ClearCacheByServer(ctx context.Context, server region.ServerID) {
	_, span := l.tracer.Start(ctx, "RegionLocator.clearCache",
		trace.WithAttributes(tracing.ServerKey.String(server.String())))
	removed := l.cache.InvalidateServer(server)
	if l.meta.ClearServer(server) {
		removed++
	}
	l.metrics.Invalidation(metrics.ScopeServer)
	l.logger.Debug("cleared cached locations for server",
		zap.String("server", server.String()),
		zap.Int("entries", removed))
	tracing.EndSpan(span, nil)
}

// ClearCacheByTable drops one table's cached locations.
func (l *RegionLocator) ClearCacheByTable(ctx context.Context, table region.TableName) {
	_, span := l.tracer.Start(ctx, "RegionLocator.clearCache",
		trace.WithAttributes(
			tracing.NamespaceKey.String(table.Namespace),
			tracing.TableKey.String(table.Qualifier),
		))
	if table.IsMeta() {
		l.meta.ClearCache()
	} else {
		l.cache.InvalidateTable(table)
	}
	l.metrics.Invalidation(metrics.ScopeTable)
	tracing.EndSpan(span, nil)
}

// UpdateCachedLocationOnError reacts to an RPC failure against a previously
// resolved location: the region's entry is dropped so the next lookup
// re-resolves it. The retry itself belongs to the operation dispatcher.
func (l *RegionLocator) UpdateCachedLocationOnError(loc *region.Location, cause error) {
	if loc == nil {
		return
	}
	if l.cache.InvalidateRegion(loc.Region) {
		l.metrics.Invalidation(metrics.ScopeRegion)
		l.logger.Debug("invalidated region after RPC failure",
			zap.String("region", loc.Region.Name()),
			zap.String("server", loc.Server.String()),
			zap.NamedError("cause", cause))
	}
}

func (l *RegionLocator) locate(ctx context.Context, table region.TableName, row []byte, dir Direction, timeout time.Duration) (region.Locations, error) {
	if err := dir.Validate(); err != nil {
		return region.Locations{}, err
	}
	if table.IsMeta() {
		return l.locateMeta(ctx, timeout)
	}

	if locs, ok := l.cache.Lookup(table, row, dir); ok {
		l.metrics.CacheHit()
		return locs, nil
	}
	l.metrics.CacheMiss()

	ch := l.inflight.fetch(lookupKey(table, row, dir), func() (region.Locations, error) {
		return l.resolve(table, row, dir)
	})
	return awaitResult(ctx, timeout, ch)
}

func (l *RegionLocator) locateMeta(ctx context.Context, timeout time.Duration) (region.Locations, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return l.meta.Locate(ctx)
}

// resolve performs one uncoalesced meta scan: locate the meta region, ask
// its primary for the target region, publish the result. It runs detached
// from any caller context so a timed-out waiter never aborts it.
func (l *RegionLocator) resolve(table region.TableName, row []byte, dir Direction) (region.Locations, error) {
	ctx, cancel := context.WithTimeout(context.Background(), l.fetchTimeout)
	defer cancel()

	metaLocs, err := l.meta.Locate(ctx)
	if err != nil {
		return region.Locations{}, err
	}
	metaLoc := metaLocs.Default()
	if metaLoc == nil {
		return region.Locations{}, fmt.Errorf("%w: meta region has no primary location", ErrResolutionFailed)
	}

	locs, err := l.client.ScanMetaForRegion(ctx, metaLoc.Server, table, row, dir)
	if err != nil {
		return region.Locations{}, fmt.Errorf("%w: scan meta for table %s: %w", ErrResolutionFailed, table, err)
	}
	def := locs.Default()
	if def == nil {
		return region.Locations{}, fmt.Errorf("%w: meta returned no primary location for row %q in table %s", ErrResolutionFailed, row, table)
	}
	if dir == Current && !def.Region.ContainsRow(row) {
		return region.Locations{}, fmt.Errorf("%w: meta returned region %s not covering row %q", ErrResolutionFailed, def.Region.Name(), row)
	}

	cached := l.cache.Insert(locs)
	l.logger.Debug("resolved region",
		zap.String("table", table.String()),
		zap.String("region", def.Region.Name()),
		zap.String("server", def.Server.String()))
	return cached, nil
}

func (l *RegionLocator) recordOutcome(err error) {
	switch {
	case err == nil:
		l.metrics.LookupDone(metrics.OutcomeResolved)
	case IsLocationTimeout(err):
		l.metrics.LookupDone(metrics.OutcomeTimeout)
	default:
		l.metrics.LookupDone(metrics.OutcomeFailed)
	}
}

// awaitResult waits for the shared outcome, bounded by the caller's deadline.
// Expiry detaches only this waiter.
func awaitResult(ctx context.Context, timeout time.Duration, ch <-chan singleflightResult) (region.Locations, error) {
	var timer <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		timer = t.C
	}
	select {
	case <-ctx.Done():
		return region.Locations{}, fmt.Errorf("%w: %w", ErrLocationTimeout, ctx.Err())
	case <-timer:
		return region.Locations{}, fmt.Errorf("%w: no resolution within %s", ErrLocationTimeout, timeout)
	case res := <-ch:
		if res.Err != nil {
			return region.Locations{}, res.Err
		}
		return res.Val.(region.Locations), nil
	}
}
