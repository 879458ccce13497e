package locator

import (
	"fmt"

	"nyxdb-client/internal/region"
	api "nyxdb-client/pkg/api"
)

// LocationsFromProto converts a wire location list into a replica-indexed
// location set. Entries without a server are kept as nil slots so the set
// length still reflects the replica count.
func LocationsFromProto(protos []*api.RegionLocation) (region.Locations, error) {
	locs := make([]*region.Location, 0, len(protos))
	for _, p := range protos {
		desc := p.GetRegion()
		if desc == nil {
			return region.Locations{}, fmt.Errorf("location without region descriptor")
		}
		if p.GetServer() == nil {
			continue
		}
		table := region.NewTableName(desc.GetNamespace(), desc.GetTable())
		locs = append(locs, &region.Location{
			Region: region.NewReplicaDescriptor(table, desc.GetStartKey(), desc.GetEndKey(), int(desc.GetReplicaId())),
			Server: region.ServerID{
				Host:      p.GetServer().GetHost(),
				Port:      int(p.GetServer().GetPort()),
				StartTime: p.GetServer().GetStartTimeMs(),
			},
		})
	}
	return region.NewLocations(locs...), nil
}

// LocationsToProto converts a location set into its wire form, skipping nil
// slots.
func LocationsToProto(locs region.Locations) []*api.RegionLocation {
	out := make([]*api.RegionLocation, 0, locs.Len())
	for _, l := range locs.All() {
		if l == nil {
			continue
		}
		out = append(out, &api.RegionLocation{
			Region: &api.RegionDescriptor{
				Namespace: l.Region.Table.Namespace,
				Table:     l.Region.Table.Qualifier,
				StartKey:  append([]byte(nil), l.Region.StartKey...),
				EndKey:    append([]byte(nil), l.Region.EndKey...),
				ReplicaId: int32(l.Region.ReplicaID),
			},
			Server: &api.ServerIdentity{
				Host:        l.Server.Host,
				Port:        int32(l.Server.Port),
				StartTimeMs: l.Server.StartTime,
			},
		})
	}
	return out
}

// DirectionToProto maps a locate direction onto the wire enum.
func DirectionToProto(d Direction) api.LocateDirection {
	switch d {
	case Before:
		return api.LocateDirection_LOCATE_DIRECTION_BEFORE
	case After:
		return api.LocateDirection_LOCATE_DIRECTION_AFTER
	default:
		return api.LocateDirection_LOCATE_DIRECTION_CURRENT
	}
}

// DirectionFromProto maps the wire enum back onto a locate direction.
func DirectionFromProto(p api.LocateDirection) Direction {
	switch p {
	case api.LocateDirection_LOCATE_DIRECTION_BEFORE:
		return Before
	case api.LocateDirection_LOCATE_DIRECTION_AFTER:
		return After
	default:
		return Current
	}
}
