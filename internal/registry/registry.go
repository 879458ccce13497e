// Package registry locates the cluster's active coordinator. The coordinator
// is the bootstrap authority for the meta region; everything else is resolved
// through the meta region itself.
package registry

import (
	"context"
	"errors"

	"nyxdb-client/internal/region"
)

// ErrNoCoordinator indicates no active coordinator is currently known to the
// registry backend.
var ErrNoCoordinator = errors.New("registry: no active coordinator")

// CoordinatorRegistry answers "who is the active coordinator right now".
// Implementations must be safe for concurrent use.
type CoordinatorRegistry interface {
	// ActiveCoordinator returns the identity of the current coordinator.
	ActiveCoordinator(ctx context.Context) (region.ServerID, error)
	Close() error
}
