package api

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrNotImplemented is returned by the Unimplemented* embeddings.
var ErrNotImplemented = status.Error(codes.Unimplemented, "not implemented")
