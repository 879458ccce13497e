package locator_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"nyxdb-client/internal/locator"
	"nyxdb-client/internal/region"
	"nyxdb-client/internal/registry"

	"github.com/stretchr/testify/require"
)

type countingRegistry struct {
	calls atomic.Int64
	inner registry.CoordinatorRegistry
}

func (r *countingRegistry) ActiveCoordinator(ctx context.Context) (region.ServerID, error) {
	r.calls.Add(1)
	return r.inner.ActiveCoordinator(ctx)
}

func (r *countingRegistry) Close() error { return r.inner.Close() }

func TestMetaResolverCachesResult(t *testing.T) {
	client := newFakeMetaClient()
	reg := &countingRegistry{inner: registry.StaticRegistry{Coordinator: coordSrv}}
	resolver := locator.NewMetaResolver(reg, client, time.Second, nil)

	locs, err := resolver.Locate(context.Background())
	require.NoError(t, err)
	require.Equal(t, metaSrv, locs.Default().Server)

	_, err = resolver.Locate(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 1, reg.calls.Load())
	require.EqualValues(t, 1, client.metaCalls.Load())

	cached, ok := resolver.Cached()
	require.True(t, ok)
	require.Equal(t, metaSrv, cached.Default().Server)
}

func TestMetaResolverClearCache(t *testing.T) {
	client := newFakeMetaClient()
	resolver := locator.NewMetaResolver(registry.StaticRegistry{Coordinator: coordSrv}, client, time.Second, nil)

	_, err := resolver.Locate(context.Background())
	require.NoError(t, err)

	resolver.ClearCache()
	_, ok := resolver.Cached()
	require.False(t, ok)

	_, err = resolver.Locate(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 2, client.metaCalls.Load())
}

func TestMetaResolverClearServer(t *testing.T) {
	client := newFakeMetaClient()
	other := region.ServerID{Host: "meta2", Port: 201, StartTime: 1}
	metaDesc := region.NewDescriptor(region.MetaTableName, nil, nil)
	client.mu.Lock()
	client.metaLocs = region.NewLocations(
		&region.Location{Region: metaDesc, Server: metaSrv},
		&region.Location{Region: metaDesc.WithReplicaID(1), Server: other},
	)
	client.mu.Unlock()
	resolver := locator.NewMetaResolver(registry.StaticRegistry{Coordinator: coordSrv}, client, time.Second, nil)

	_, err := resolver.Locate(context.Background())
	require.NoError(t, err)

	// Dropping a node nobody serves changes nothing.
	require.False(t, resolver.ClearServer(srvA))

	// Dropping the replica leaves the primary cached.
	require.True(t, resolver.ClearServer(other))
	cached, ok := resolver.Cached()
	require.True(t, ok)
	require.Nil(t, cached.Get(1))
	require.Equal(t, metaSrv, cached.Default().Server)

	// Dropping the primary empties the cache entirely.
	require.True(t, resolver.ClearServer(metaSrv))
	_, ok = resolver.Cached()
	require.False(t, ok)
}

func TestMetaResolverRegistryFailure(t *testing.T) {
	client := newFakeMetaClient()
	resolver := locator.NewMetaResolver(registry.StaticRegistry{}, client, 200*time.Millisecond, nil)

	_, err := resolver.Locate(context.Background())
	require.Error(t, err)
	require.True(t, locator.IsCoordinatorUnavailable(err), "got %v", err)
	require.EqualValues(t, 0, client.metaCalls.Load())

	// A failure is never cached.
	_, ok := resolver.Cached()
	require.False(t, ok)
}
