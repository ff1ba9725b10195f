package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified name of the token service.
const ServiceName = "carmeet.security.TokenService"

// Method names.
const (
	MethodIssueToken        = "IssueToken"
	MethodValidateToken     = "ValidateToken"
	MethodRevokeToken       = "RevokeToken"
	MethodRevokeUserTokens  = "RevokeUserTokens"
	MethodRemoveExpired     = "RemoveExpired"
	MethodRequestActivation = "RequestActivation"
	MethodActivate          = "Activate"
)

// FullMethod returns the path gRPC uses for method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// TokenServiceServer is the server API of the token service. Messages are
// protobuf well-known types.
type TokenServiceServer interface {
	IssueToken(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	ValidateToken(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
	RevokeToken(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
	RevokeUserTokens(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
	RemoveExpired(context.Context, *emptypb.Empty) (*wrapperspb.Int64Value, error)
	RequestActivation(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Activate(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
}

// TokenServiceDesc describes the token service for grpc.Server.RegisterService.
var TokenServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TokenServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: MethodIssueToken, Handler: unary(MethodIssueToken, TokenServiceServer.IssueToken)},
		{MethodName: MethodValidateToken, Handler: unary(MethodValidateToken, TokenServiceServer.ValidateToken)},
		{MethodName: MethodRevokeToken, Handler: unary(MethodRevokeToken, TokenServiceServer.RevokeToken)},
		{MethodName: MethodRevokeUserTokens, Handler: unary(MethodRevokeUserTokens, TokenServiceServer.RevokeUserTokens)},
		{MethodName: MethodRemoveExpired, Handler: unary(MethodRemoveExpired, TokenServiceServer.RemoveExpired)},
		{MethodName: MethodRequestActivation, Handler: unary(MethodRequestActivation, TokenServiceServer.RequestActivation)},
		{MethodName: MethodActivate, Handler: unary(MethodActivate, TokenServiceServer.Activate)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: protoFile,
}

func RegisterTokenServiceServer(s grpc.ServiceRegistrar, srv TokenServiceServer) {
	s.RegisterService(&TokenServiceDesc, srv)
}

// unary builds the method handler protoc-gen-go-grpc would generate.
func unary[Req any, Resp any](method string, call func(TokenServiceServer, context.Context, *Req) (Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		s := srv.(TokenServiceServer)
		if interceptor == nil {
			out, err := call(s, ctx, in)
			return out, err
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: FullMethod(method),
		}
		handler := func(ctx context.Context, req any) (any, error) {
			out, err := call(s, ctx, req.(*Req))
			return out, err
		}
		return interceptor(ctx, in, info, handler)
	}
}
