package locator

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	// ErrCoordinatorUnavailable indicates no active coordinator could be
	// reached within the deadline during meta bootstrap.
	ErrCoordinatorUnavailable = errors.New("locator: coordinator unavailable")
	// ErrLocationTimeout indicates the caller's deadline expired while
	// waiting for a resolution. The underlying fetch keeps running and may
	// still populate the cache for later callers.
	ErrLocationTimeout = errors.New("locator: region location timed out")
	// ErrResolutionFailed indicates the meta lookup itself failed. Nothing is
	// cached for a failed attempt, so a retry re-triggers resolution.
	ErrResolutionFailed = errors.New("locator: region resolution failed")
	// ErrInvalidDirection indicates an unknown locate direction.
	ErrInvalidDirection = errors.New("locator: invalid locate direction")
)

// IsCoordinatorUnavailable reports whether err means the coordinator could
// not be reached.
func IsCoordinatorUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrCoordinatorUnavailable) {
		return true
	}
	if st, ok := status.FromError(err); ok {
		return st.Code() == codes.Unavailable
	}
	return false
}

// IsLocationTimeout reports whether err is a caller-side location deadline.
func IsLocationTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrLocationTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if st, ok := status.FromError(err); ok {
		return st.Code() == codes.DeadlineExceeded
	}
	return false
}

// IsResolutionFailed reports whether err represents a failed meta lookup.
func IsResolutionFailed(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrResolutionFailed)
}
