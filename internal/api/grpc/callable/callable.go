// Package callable describes the contractchecker.v1.Callable gRPC service.
// Every method takes and returns a google.protobuf.Struct holding the JSON
// shaped request or response record.
package callable

import (
	"context"
	"fmt"

	"github.com/mitchellh/mapstructure"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "contractchecker.v1.Callable"

const (
	MethodAddToWaitlist     = "AddToWaitlist"
	MethodCheckDevice       = "CheckDevice"
	MethodVerifyDevice      = "VerifyDevice"
	MethodGenerateUploadURL = "GenerateUploadUrl"
)

// FullMethod returns the /service/method path of method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// Server is the server API for the Callable service.
type Server interface {
	AddToWaitlist(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	CheckDevice(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	VerifyDevice(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	GenerateUploadUrl(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(srv Server, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, call unaryMethod) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(Server), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: FullMethod(method),
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(Server), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ServiceDesc is the grpc.ServiceDesc for the Callable service.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*Server)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: MethodAddToWaitlist,
			Handler:    unaryHandler(MethodAddToWaitlist, Server.AddToWaitlist),
		},
		{
			MethodName: MethodCheckDevice,
			Handler:    unaryHandler(MethodCheckDevice, Server.CheckDevice),
		},
		{
			MethodName: MethodVerifyDevice,
			Handler:    unaryHandler(MethodVerifyDevice, Server.VerifyDevice),
		},
		{
			MethodName: MethodGenerateUploadURL,
			Handler:    unaryHandler(MethodGenerateUploadURL, Server.GenerateUploadUrl),
		},
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterServer registers srv on s.
func RegisterServer(s grpc.ServiceRegistrar, srv Server) {
	s.RegisterService(&ServiceDesc, srv)
}

// Client calls the Callable service over cc.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Call invokes method with payload and returns the decoded response document.
func (c *Client) Call(ctx context.Context, method string, payload map[string]any, opts ...grpc.CallOption) (map[string]any, error) {
	in, err := structpb.NewStruct(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out.AsMap(), nil
}

// Decode copies the fields of in into out, matching json tags. Scalars are
// coerced where the conversion is lossless, so a numeric otp becomes a string.
func Decode(in *structpb.Struct, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("failed to build decoder: %w", err)
	}
	if err := decoder.Decode(in.AsMap()); err != nil {
		return fmt.Errorf("failed to decode request: %w", err)
	}
	return nil
}

// Encode builds a response document from fields.
func Encode(fields map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to encode response: %w", err)
	}
	return out, nil
}
