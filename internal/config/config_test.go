package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "client.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadClientConfig(t *testing.T) {
	path := writeConfig(t, `
registry:
  endpoints: ["etcd-1:2379", "etcd-2:2379"]
  dialTimeout: 3s
  key: /nyxdb/coordinator/leader
coordinator:
  addresses: ["coord-1:7070"]
locator:
  lookupTimeout: 2s
  fetchTimeout: 15s
tracing:
  endpoint: otel-collector:4317
  insecure: true
  serviceName: shop-client
  sampleRatio: 0.25
metrics:
  address: ":9100"
  namespace: shop
`)

	cfg, err := LoadClientConfig(path)
	require.NoError(t, err)
	require.Equal(t, []string{"etcd-1:2379", "etcd-2:2379"}, cfg.Registry.Endpoints)
	require.Equal(t, []string{"coord-1:7070"}, cfg.Coordinator.Addresses)

	lookup, err := cfg.LookupTimeout()
	require.NoError(t, err)
	require.Equal(t, 2*time.Second, lookup)

	fetch, err := cfg.FetchTimeout()
	require.NoError(t, err)
	require.Equal(t, 15*time.Second, fetch)

	etcd, err := cfg.EtcdConfig()
	require.NoError(t, err)
	require.Equal(t, 3*time.Second, etcd.DialTimeout)
	require.Equal(t, "/nyxdb/coordinator/leader", etcd.Key)

	tc := cfg.TracingConfig()
	require.Equal(t, "otel-collector:4317", tc.Endpoint)
	require.True(t, tc.Insecure)
	require.Equal(t, "shop-client", tc.ServiceName)
	require.InDelta(t, 0.25, tc.SampleRatio, 1e-9)
}

func TestTimeoutDefaults(t *testing.T) {
	cfg := &ClientConfig{}

	lookup, err := cfg.LookupTimeout()
	require.NoError(t, err)
	require.Equal(t, defaultLookupTimeout, lookup)

	fetch, err := cfg.FetchTimeout()
	require.NoError(t, err)
	require.Equal(t, defaultFetchTimeout, fetch)

	etcd, err := cfg.EtcdConfig()
	require.NoError(t, err)
	require.Equal(t, defaultDialTimeout, etcd.DialTimeout)
}

func TestBadDurationRejected(t *testing.T) {
	cfg := &ClientConfig{}
	cfg.Locator.LookupTimeout = "soon"
	_, err := cfg.LookupTimeout()
	require.Error(t, err)
}

func TestLoadClientConfigMissingFile(t *testing.T) {
	_, err := LoadClientConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
