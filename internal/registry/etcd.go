package registry

import (
	"context"
	"fmt"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"

	"nyxdb-client/internal/region"
)

// DefaultCoordinatorKey is where the elected coordinator publishes its
// identity in the "host,port,startTime" form.
const DefaultCoordinatorKey = "/nyxdb/coordinator/leader"

// EtcdConfig configures the etcd-backed registry.
type EtcdConfig struct {
	Endpoints   []string
	DialTimeout time.Duration
	// Key overrides DefaultCoordinatorKey.
	Key string
}

// etcdRegistry reads the coordinator election key from the cluster's etcd.
type etcdRegistry struct {
	cli *clientv3.Client
	key string
}

// NewEtcdRegistry connects to etcd and returns a registry backed by it.
func NewEtcdRegistry(cfg EtcdConfig) (CoordinatorRegistry, error) {
	if len(cfg.Endpoints) == 0 {
		return nil, fmt.Errorf("etcd registry: no endpoints configured")
	}
	dialTimeout := cfg.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = 5 * time.Second
	}
	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   cfg.Endpoints,
		DialTimeout: dialTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("etcd registry: connect: %w", err)
	}
	key := cfg.Key
	if key == "" {
		key = DefaultCoordinatorKey
	}
	return &etcdRegistry{cli: cli, key: key}, nil
}

func (r *etcdRegistry) ActiveCoordinator(ctx context.Context) (region.ServerID, error) {
	resp, err := r.cli.Get(ctx, r.key)
	if err != nil {
		return region.ServerID{}, fmt.Errorf("etcd registry: read %s: %w", r.key, err)
	}
	if len(resp.Kvs) == 0 {
		return region.ServerID{}, ErrNoCoordinator
	}
	sn, err := region.ParseServerID(string(resp.Kvs[0].Value))
	if err != nil {
		return region.ServerID{}, fmt.Errorf("etcd registry: %w", err)
	}
	return sn, nil
}

func (r *etcdRegistry) Close() error {
	return r.cli.Close()
}
