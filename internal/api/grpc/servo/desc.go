package servo

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "servo.v1.ServerService"

// Full method names.
const (
	GetServerMethod   = "/" + ServiceName + "/GetServer"
	ListServersMethod = "/" + ServiceName + "/ListServers"
	StartServerMethod = "/" + ServiceName + "/StartServer"
)

// ServerServiceServer is the server API of servo.v1.ServerService.
type ServerServiceServer interface {
	// GetServer describes one server by name.
	GetServer(ctx context.Context, name *wrapperspb.StringValue) (*structpb.Struct, error)
	// ListServers describes every server.
	ListServers(ctx context.Context, empty *emptypb.Empty) (*structpb.ListValue, error)
	// StartServer refreshes the server's artifact when stale and launches it.
	StartServer(ctx context.Context, name *wrapperspb.StringValue) (*structpb.Struct, error)
}

// ServiceDesc describes servo.v1.ServerService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ServerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetServer",
			Handler:    getServerHandler,
		},
		{
			MethodName: "ListServers",
			Handler:    listServersHandler,
		},
		{
			MethodName: "StartServer",
			Handler:    startServerHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "servo/v1/servo.proto",
}

// RegisterServerServiceServer registers srv on s.
func RegisterServerServiceServer(s grpc.ServiceRegistrar, srv ServerServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func getServerHandler(
	srv any,
	ctx context.Context, //nolint:revive // Signature is fixed by grpc.MethodHandler.
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(ServerServiceServer).GetServer(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: GetServerMethod,
	}

	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ServerServiceServer).GetServer(ctx, req.(*wrapperspb.StringValue))
	}

	return interceptor(ctx, in, info, handler)
}

func listServersHandler(
	srv any,
	ctx context.Context, //nolint:revive // Signature is fixed by grpc.MethodHandler.
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(ServerServiceServer).ListServers(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ListServersMethod,
	}

	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ServerServiceServer).ListServers(ctx, req.(*emptypb.Empty))
	}

	return interceptor(ctx, in, info, handler)
}

func startServerHandler(
	srv any,
	ctx context.Context, //nolint:revive // Signature is fixed by grpc.MethodHandler.
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(ServerServiceServer).StartServer(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: StartServerMethod,
	}

	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ServerServiceServer).StartServer(ctx, req.(*wrapperspb.StringValue))
	}

	return interceptor(ctx, in, info, handler)
}
