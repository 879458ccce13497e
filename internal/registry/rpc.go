package registry

import (
	"context"
	"fmt"

	"google.golang.org/grpc"

	"nyxdb-client/internal/region"
	api "nyxdb-client/pkg/api"
)

// rpcRegistry bootstraps by asking the configured coordinator quorum
// addresses directly, taking the first answer. Used when the cluster exposes
// no external registry.
type rpcRegistry struct {
	addresses []string
	opts      []grpc.DialOption
}

// NewRPCRegistry returns a registry that issues GetActiveCoordinator against
// each address until one responds.
func NewRPCRegistry(addresses []string, opts ...grpc.DialOption) (CoordinatorRegistry, error) {
	if len(addresses) == 0 {
		return nil, fmt.Errorf("rpc registry: no coordinator addresses configured")
	}
	if len(opts) == 0 {
		opts = append(opts, grpc.WithInsecure())
	}
	return &rpcRegistry{addresses: addresses, opts: opts}, nil
}

func (r *rpcRegistry) ActiveCoordinator(ctx context.Context) (region.ServerID, error) {
	var lastErr error
	for _, addr := range r.addresses {
		sn, err := r.ask(ctx, addr)
		if err == nil {
			return sn, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = ErrNoCoordinator
	}
	return region.ServerID{}, fmt.Errorf("rpc registry: %w", lastErr)
}

func (r *rpcRegistry) ask(ctx context.Context, addr string) (region.ServerID, error) {
	conn, err := grpc.DialContext(ctx, addr, r.opts...)
	if err != nil {
		return region.ServerID{}, err
	}
	defer conn.Close()

	resp, err := api.NewCoordinatorClient(conn).GetActiveCoordinator(ctx, &api.GetActiveCoordinatorRequest{})
	if err != nil {
		return region.ServerID{}, err
	}
	coord := resp.GetCoordinator()
	if coord == nil {
		return region.ServerID{}, ErrNoCoordinator
	}
	return region.ServerID{
		Host:      coord.GetHost(),
		Port:      int(coord.GetPort()),
		StartTime: coord.GetStartTimeMs(),
	}, nil
}

func (r *rpcRegistry) Close() error {
	return nil
}
