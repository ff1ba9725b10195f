package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Client calls the token service over an existing connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) IssueToken(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(MethodIssueToken), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ValidateToken(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, FullMethod(MethodValidateToken), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) RevokeToken(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, FullMethod(MethodRevokeToken), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) RevokeUserTokens(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, FullMethod(MethodRevokeUserTokens), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) RemoveExpired(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.Int64Value, error) {
	out := new(wrapperspb.Int64Value)
	if err := c.cc.Invoke(ctx, FullMethod(MethodRemoveExpired), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) RequestActivation(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(MethodRequestActivation), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Activate(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, FullMethod(MethodActivate), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
