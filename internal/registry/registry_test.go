package registry

import (
	"context"
	"testing"

	"nyxdb-client/internal/region"

	"github.com/stretchr/testify/require"
)

func TestStaticRegistry(t *testing.T) {
	want := region.ServerID{Host: "coord", Port: 7070, StartTime: 1}
	reg := StaticRegistry{Coordinator: want}

	got, err := reg.ActiveCoordinator(context.Background())
	require.NoError(t, err)
	require.Equal(t, want, got)
	require.NoError(t, reg.Close())
}

func TestStaticRegistryEmpty(t *testing.T) {
	reg := StaticRegistry{}
	_, err := reg.ActiveCoordinator(context.Background())
	require.ErrorIs(t, err, ErrNoCoordinator)
}

func TestRPCRegistryRequiresAddresses(t *testing.T) {
	_, err := NewRPCRegistry(nil)
	require.Error(t, err)
}

func TestEtcdRegistryRequiresEndpoints(t *testing.T) {
	_, err := NewEtcdRegistry(EtcdConfig{})
	require.Error(t, err)
}
