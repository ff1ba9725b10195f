package grpc

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/carmeet/internal/common"
	"github.com/dmitrijs2005/carmeet/internal/server/models"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

var _ TokenServiceServer = (*GRPCServer)(nil)

func (s *GRPCServer) IssueToken(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	userID, err := parseUserID(req.GetValue())
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	token, err := s.tokens.GenerateToken(ctx, userID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.logger.Info(ctx, "Token issued", "user", userID, "by", adminSubject(ctx))

	return s.tokenStruct(token, true)
}

func (s *GRPCServer) ValidateToken(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	userID, err := s.tokens.ValidateTokenAndFetchUser(ctx, req.GetValue())
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return wrapperspb.String(userID.String()), nil
}

func (s *GRPCServer) RevokeToken(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	if err := s.tokens.RemoveTokenRequest(ctx, req.GetValue()); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) RevokeUserTokens(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	userID, err := parseUserID(req.GetValue())
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	if err := s.tokens.RemoveUserTokenRequests(ctx, userID); err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.logger.Info(ctx, "User tokens revoked", "user", userID, "by", adminSubject(ctx))
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) RemoveExpired(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.Int64Value, error) {
	removed, err := s.cleaner.HandleGarbageCollection(ctx, true)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return wrapperspb.Int64(removed), nil
}

// RequestActivation expects {"user_id": string, "reset": bool}. The token
// itself is only delivered by e-mail.
func (s *GRPCServer) RequestActivation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.activation == nil {
		return nil, status.Error(codes.Unimplemented, "activation requires a database")
	}

	fields := req.GetFields()
	userID, err := parseUserID(fields["user_id"].GetStringValue())
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	token, err := s.activation.RequestActivation(ctx, userID, fields["reset"].GetBoolValue())
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return s.tokenStruct(token, false)
}

func (s *GRPCServer) Activate(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	if s.activation == nil {
		return nil, status.Error(codes.Unimplemented, "activation requires a database")
	}

	user, err := s.activation.Activate(ctx, req.GetValue())
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return wrapperspb.String(user.ID.String()), nil
}

func (s *GRPCServer) tokenStruct(token *models.Token, withToken bool) (*structpb.Struct, error) {
	fields := map[string]any{
		"expires_at": token.ExpiresAt.UTC().Format(time.RFC3339),
		"lifetime":   s.tokens.TokenLifetime(),
	}
	if withToken {
		fields["token"] = token.PublicToken
	}

	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Error(codes.Internal, common.ErrorInternal.Error())
	}
	return out, nil
}

func parseUserID(v string) (uuid.UUID, error) {
	id, err := uuid.Parse(v)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", common.ErrMalformedUserIdentity, v)
	}
	return id, nil
}
