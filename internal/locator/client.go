package locator

import (
	"context"

	"nyxdb-client/internal/region"
)

// MetaClient issues the location RPCs this package depends on. The transport
// behind it is external; internal/locator/grpc provides the gRPC one.
type MetaClient interface {
	// LocateMetaRegion asks the coordinator for the meta region's replica
	// locations.
	LocateMetaRegion(ctx context.Context, coordinator region.ServerID) (region.Locations, error)
	// ScanMetaForRegion asks the node serving the meta region for the
	// locations of the region owning row in table.
	ScanMetaForRegion(ctx context.Context, server region.ServerID, table region.TableName, row []byte, dir Direction) (region.Locations, error)
}
