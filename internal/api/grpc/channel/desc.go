package channel

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	// ServiceName is the fully qualified gRPC service name.
	ServiceName = "radiobridge.v1.MethodChannel"
	// InvokeFullMethod is the full method name of Invoke.
	InvokeFullMethod = "/" + ServiceName + "/Invoke"
)

// MethodChannelServer is the server API for the MethodChannel service.
type MethodChannelServer interface {
	Invoke(ctx context.Context, request *structpb.Struct) (*structpb.Value, error)
}

// RegisterMethodChannelServer registers srv on s.
func RegisterMethodChannelServer(s grpc.ServiceRegistrar, srv MethodChannelServer) {
	s.RegisterService(&serviceDesc, srv)
}

// invokeHandler decodes the request and runs it through the interceptor chain.
func invokeHandler(
	srv any,
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(MethodChannelServer).Invoke(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: InvokeFullMethod,
	}

	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(MethodChannelServer).Invoke(ctx, req.(*structpb.Struct))
	}

	return interceptor(ctx, in, info, handler)
}

//nolint:gochecknoglobals // Registered by pointer, like generated descriptors.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MethodChannelServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Invoke",
			Handler:    invokeHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "radiobridge/v1/method_channel.proto",
}

// MethodChannelClient is the client API for the MethodChannel service.
type MethodChannelClient interface {
	Invoke(ctx context.Context, request *structpb.Struct, opts ...grpc.CallOption) (*structpb.Value, error)
}

// methodChannelClient calls Invoke over a client connection.
type methodChannelClient struct {
	// cc is the connection calls are sent on.
	cc grpc.ClientConnInterface
}

// NewMethodChannelClient creates a client on cc.
func NewMethodChannelClient(cc grpc.ClientConnInterface) MethodChannelClient {
	return &methodChannelClient{cc: cc}
}

// Invoke sends one method channel call.
func (c *methodChannelClient) Invoke(
	ctx context.Context,
	request *structpb.Struct,
	opts ...grpc.CallOption,
) (*structpb.Value, error) {
	out := new(structpb.Value)

	if err := c.cc.Invoke(ctx, InvokeFullMethod, request, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}
