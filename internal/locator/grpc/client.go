package locgrpc

import (
	"context"
	"sync"

	"google.golang.org/grpc"

	"nyxdb-client/internal/locator"
	"nyxdb-client/internal/region"
	api "nyxdb-client/pkg/api"
)

// Client implements locator.MetaClient over gRPC. Connections are cached per
// target address and reused across calls.
type Client struct {
	mu    sync.Mutex
	conns map[string]*grpc.ClientConn
	opts  []grpc.DialOption
}

var _ locator.MetaClient = (*Client)(nil)

func NewClient(opts ...grpc.DialOption) *Client {
	if len(opts) == 0 {
		opts = append(opts, grpc.WithInsecure())
	}
	return &Client{
		conns: make(map[string]*grpc.ClientConn),
		opts:  opts,
	}
}

func (c *Client) conn(ctx context.Context, addr string) (*grpc.ClientConn, error) {
	c.mu.Lock()
	if conn, ok := c.conns[addr]; ok {
		c.mu.Unlock()
		return conn, nil
	}
	c.mu.Unlock()

	conn, err := grpc.DialContext(ctx, addr, c.opts...)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.conns[addr]; ok {
		_ = conn.Close()
		return existing, nil
	}
	c.conns[addr] = conn
	return conn, nil
}

func (c *Client) LocateMetaRegion(ctx context.Context, coordinator region.ServerID) (region.Locations, error) {
	conn, err := c.conn(ctx, coordinator.Addr())
	if err != nil {
		return region.Locations{}, err
	}
	resp, err := api.NewLocatorClient(conn).LocateMetaRegion(ctx, &api.LocateMetaRegionRequest{})
	if err != nil {
		return region.Locations{}, err
	}
	return locator.LocationsFromProto(resp.GetLocations())
}

func (c *Client) ScanMetaForRegion(ctx context.Context, server region.ServerID, table region.TableName, row []byte, dir locator.Direction) (region.Locations, error) {
	conn, err := c.conn(ctx, server.Addr())
	if err != nil {
		return region.Locations{}, err
	}
	resp, err := api.NewLocatorClient(conn).ScanMetaForRegion(ctx, &api.ScanMetaForRegionRequest{
		Namespace: table.Namespace,
		Table:     table.Qualifier,
		Row:       row,
		Direction: locator.DirectionToProto(dir),
	})
	if err != nil {
		return region.Locations{}, err
	}
	return locator.LocationsFromProto(resp.GetLocations())
}

// Close releases every cached connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var firstErr error
	for addr, conn := range c.conns {
		if err := conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(c.conns, addr)
	}
	return firstErr
}
