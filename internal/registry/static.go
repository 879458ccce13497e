package registry

import (
	"context"

	"nyxdb-client/internal/region"
)

// StaticRegistry always answers with a fixed coordinator identity. Useful for
// single-node clusters and tests.
type StaticRegistry struct {
	Coordinator region.ServerID
}

func (r StaticRegistry) ActiveCoordinator(ctx context.Context) (region.ServerID, error) {
	if r.Coordinator.IsZero() {
		return region.ServerID{}, ErrNoCoordinator
	}
	return r.Coordinator, nil
}

func (r StaticRegistry) Close() error {
	return nil
}
