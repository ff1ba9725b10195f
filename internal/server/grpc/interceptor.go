package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/carmeet/internal/common"
	"github.com/dmitrijs2005/carmeet/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const adminSubjectKey ctxKey = "adminSubject"

var adminMethods = map[string]bool{
	FullMethod(MethodIssueToken):       true,
	FullMethod(MethodValidateToken):    true,
	FullMethod(MethodRevokeToken):      true,
	FullMethod(MethodRevokeUserTokens): true,
	FullMethod(MethodRemoveExpired):    true,
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {

	if adminMethods[info.FullMethod] {

		var accessToken string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			values := md.Get(common.AccessTokenHeaderName)
			if len(values) > 0 {
				accessToken = values[0]
			}
		}
		if len(accessToken) == 0 {
			return nil, status.Error(codes.Unauthenticated, "missing token")
		}

		claims, err := auth.ParseAdminToken(accessToken, s.jwtSecret)
		if err != nil {
			if errors.Is(err, common.ErrorUnauthorized) {
				return nil, status.Error(codes.PermissionDenied, "admin token required")
			}
			return nil, status.Error(codes.Unauthenticated, "invalid token")
		}

		ctx = context.WithValue(ctx, adminSubjectKey, claims.Subject)
	}

	return handler(ctx, req)
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.logger.Debug(ctx, "rpc", "method", info.FullMethod, "code", status.Code(err).String(), "duration", time.Since(start))
	return resp, err
}

// adminSubject returns the subject of the admin token of the call, if any.
func adminSubject(ctx context.Context) string {
	v, _ := ctx.Value(adminSubjectKey).(string)
	return v
}
