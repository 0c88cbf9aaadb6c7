package grpc

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "bounces.v1.BounceService"

const (
	ParseMethod  = "/" + ServiceName + "/Parse"
	SubmitMethod = "/" + ServiceName + "/Submit"
)

// BounceServiceServer is the server API of bounces.v1.BounceService. Requests
// and responses are Struct messages, so the service needs no generated code.
type BounceServiceServer interface {
	Parse(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Submit(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

var ServiceDesc = grpclib.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BounceServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "Parse", Handler: parseHandler},
		{MethodName: "Submit", Handler: submitHandler},
	},
	Streams:  []grpclib.StreamDesc{},
	Metadata: "bounces/v1/bounces.proto",
}

// Register attaches srv to a gRPC server.
func Register(s grpclib.ServiceRegistrar, srv BounceServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func parseHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BounceServiceServer).Parse(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: ParseMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(BounceServiceServer).Parse(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func submitHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BounceServiceServer).Submit(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: SubmitMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(BounceServiceServer).Submit(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}
