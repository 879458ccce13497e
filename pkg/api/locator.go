package api

import (
	"context"

	"google.golang.org/grpc"
)

// Wire types for the location RPCs. Kept as plain structs; the services are
// registered through hand-written descriptors below.

type ServerIdentity struct {
	Host        string
	Port        int32
	StartTimeMs int64
}

func (s *ServerIdentity) GetHost() string {
	if s == nil {
		return ""
	}
	return s.Host
}

func (s *ServerIdentity) GetPort() int32 {
	if s == nil {
		return 0
	}
	return s.Port
}

func (s *ServerIdentity) GetStartTimeMs() int64 {
	if s == nil {
		return 0
	}
	return s.StartTimeMs
}

type RegionDescriptor struct {
	Namespace string
	Table     string
	StartKey  []byte
	EndKey    []byte
	ReplicaId int32
}

func (r *RegionDescriptor) GetNamespace() string {
	if r == nil {
		return ""
	}
	return r.Namespace
}

func (r *RegionDescriptor) GetTable() string {
	if r == nil {
		return ""
	}
	return r.Table
}

func (r *RegionDescriptor) GetStartKey() []byte {
	if r == nil {
		return nil
	}
	return r.StartKey
}

func (r *RegionDescriptor) GetEndKey() []byte {
	if r == nil {
		return nil
	}
	return r.EndKey
}

func (r *RegionDescriptor) GetReplicaId() int32 {
	if r == nil {
		return 0
	}
	return r.ReplicaId
}

type RegionLocation struct {
	Region *RegionDescriptor
	Server *ServerIdentity
}

func (l *RegionLocation) GetRegion() *RegionDescriptor {
	if l == nil {
		return nil
	}
	return l.Region
}

func (l *RegionLocation) GetServer() *ServerIdentity {
	if l == nil {
		return nil
	}
	return l.Server
}

type LocateDirection int32

const (
	LocateDirection_LOCATE_DIRECTION_CURRENT LocateDirection = 0
	LocateDirection_LOCATE_DIRECTION_BEFORE  LocateDirection = 1
	LocateDirection_LOCATE_DIRECTION_AFTER   LocateDirection = 2
)

type LocateMetaRegionRequest struct{}

type LocateMetaRegionResponse struct {
	Locations []*RegionLocation
}

func (r *LocateMetaRegionResponse) GetLocations() []*RegionLocation {
	if r == nil {
		return nil
	}
	return r.Locations
}

type ScanMetaForRegionRequest struct {
	Namespace string
	Table     string
	Row       []byte
	Direction LocateDirection
}

func (r *ScanMetaForRegionRequest) GetNamespace() string {
	if r == nil {
		return ""
	}
	return r.Namespace
}

func (r *ScanMetaForRegionRequest) GetTable() string {
	if r == nil {
		return ""
	}
	return r.Table
}

func (r *ScanMetaForRegionRequest) GetRow() []byte {
	if r == nil {
		return nil
	}
	return r.Row
}

func (r *ScanMetaForRegionRequest) GetDirection() LocateDirection {
	if r == nil {
		return LocateDirection_LOCATE_DIRECTION_CURRENT
	}
	return r.Direction
}

type ScanMetaForRegionResponse struct {
	Locations []*RegionLocation
}

func (r *ScanMetaForRegionResponse) GetLocations() []*RegionLocation {
	if r == nil {
		return nil
	}
	return r.Locations
}

type GetActiveCoordinatorRequest struct{}

type GetActiveCoordinatorResponse struct {
	Coordinator *ServerIdentity
}

func (r *GetActiveCoordinatorResponse) GetCoordinator() *ServerIdentity {
	if r == nil {
		return nil
	}
	return r.Coordinator
}

// --- Locator service ---

type LocatorClient interface {
	LocateMetaRegion(ctx context.Context, in *LocateMetaRegionRequest, opts ...grpc.CallOption) (*LocateMetaRegionResponse, error)
	ScanMetaForRegion(ctx context.Context, in *ScanMetaForRegionRequest, opts ...grpc.CallOption) (*ScanMetaForRegionResponse, error)
}

type locatorClient struct {
	cc grpc.ClientConnInterface
}

func NewLocatorClient(cc grpc.ClientConnInterface) LocatorClient {
	return &locatorClient{cc: cc}
}

func (c *locatorClient) LocateMetaRegion(ctx context.Context, in *LocateMetaRegionRequest, opts ...grpc.CallOption) (*LocateMetaRegionResponse, error) {
	out := new(LocateMetaRegionResponse)
	if err := c.cc.Invoke(ctx, "/nyxdb.api.Locator/LocateMetaRegion", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *locatorClient) ScanMetaForRegion(ctx context.Context, in *ScanMetaForRegionRequest, opts ...grpc.CallOption) (*ScanMetaForRegionResponse, error) {
	out := new(ScanMetaForRegionResponse)
	if err := c.cc.Invoke(ctx, "/nyxdb.api.Locator/ScanMetaForRegion", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

type LocatorServer interface {
	LocateMetaRegion(context.Context, *LocateMetaRegionRequest) (*LocateMetaRegionResponse, error)
	ScanMetaForRegion(context.Context, *ScanMetaForRegionRequest) (*ScanMetaForRegionResponse, error)
}

type UnimplementedLocatorServer struct{}

func (UnimplementedLocatorServer) LocateMetaRegion(context.Context, *LocateMetaRegionRequest) (*LocateMetaRegionResponse, error) {
	return nil, ErrNotImplemented
}

func (UnimplementedLocatorServer) ScanMetaForRegion(context.Context, *ScanMetaForRegionRequest) (*ScanMetaForRegionResponse, error) {
	return nil, ErrNotImplemented
}

var locatorServiceDesc = grpc.ServiceDesc{
	ServiceName: "nyxdb.api.Locator",
	HandlerType: (*LocatorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "LocateMetaRegion", Handler: _Locator_LocateMetaRegion_Handler},
		{MethodName: "ScanMetaForRegion", Handler: _Locator_ScanMetaForRegion_Handler},
	},
}

func RegisterLocatorServer(s *grpc.Server, srv LocatorServer) {
	s.RegisterService(&locatorServiceDesc, srv)
}

func _Locator_LocateMetaRegion_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(LocateMetaRegionRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LocatorServer).LocateMetaRegion(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/nyxdb.api.Locator/LocateMetaRegion"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(LocatorServer).LocateMetaRegion(ctx, req.(*LocateMetaRegionRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Locator_ScanMetaForRegion_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ScanMetaForRegionRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LocatorServer).ScanMetaForRegion(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/nyxdb.api.Locator/ScanMetaForRegion"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(LocatorServer).ScanMetaForRegion(ctx, req.(*ScanMetaForRegionRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// --- Coordinator service ---

type CoordinatorClient interface {
	GetActiveCoordinator(ctx context.Context, in *GetActiveCoordinatorRequest, opts ...grpc.CallOption) (*GetActiveCoordinatorResponse, error)
}

type coordinatorClient struct {
	cc grpc.ClientConnInterface
}

func NewCoordinatorClient(cc grpc.ClientConnInterface) CoordinatorClient {
	return &coordinatorClient{cc: cc}
}

func (c *coordinatorClient) GetActiveCoordinator(ctx context.Context, in *GetActiveCoordinatorRequest, opts ...grpc.CallOption) (*GetActiveCoordinatorResponse, error) {
	out := new(GetActiveCoordinatorResponse)
	if err := c.cc.Invoke(ctx, "/nyxdb.api.Coordinator/GetActiveCoordinator", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

type CoordinatorServer interface {
	GetActiveCoordinator(context.Context, *GetActiveCoordinatorRequest) (*GetActiveCoordinatorResponse, error)
}

type UnimplementedCoordinatorServer struct{}

func (UnimplementedCoordinatorServer) GetActiveCoordinator(context.Context, *GetActiveCoordinatorRequest) (*GetActiveCoordinatorResponse, error) {
	return nil, ErrNotImplemented
}

var coordinatorServiceDesc = grpc.ServiceDesc{
	ServiceName: "nyxdb.api.Coordinator",
	HandlerType: (*CoordinatorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetActiveCoordinator", Handler: _Coordinator_GetActiveCoordinator_Handler},
	},
}

func RegisterCoordinatorServer(s *grpc.Server, srv CoordinatorServer) {
	s.RegisterService(&coordinatorServiceDesc, srv)
}

func _Coordinator_GetActiveCoordinator_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetActiveCoordinatorRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CoordinatorServer).GetActiveCoordinator(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/nyxdb.api.Coordinator/GetActiveCoordinator"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CoordinatorServer).GetActiveCoordinator(ctx, req.(*GetActiveCoordinatorRequest))
	}
	return interceptor(ctx, in, info, handler)
}
