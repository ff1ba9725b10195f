package grpc

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/carmeet/internal/server/auth"
	"github.com/golang-jwt/jwt/v5"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func newInterceptorServer() *GRPCServer {
	return NewGRPCServer("", nopLogger{}, nil, nil, nil, testSecret, nil)
}

func TestInterceptor_PublicMethod_AllowsWithoutToken(t *testing.T) {
	s := newInterceptorServer()

	info := &grpc.UnaryServerInfo{FullMethod: FullMethod(MethodActivate)}
	handlerCalled := false

	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		handlerCalled = true
		return "ok", nil
	}

	resp, err := s.accessTokenInterceptor(context.Background(), nil, info, h)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !handlerCalled {
		t.Fatal("handler was not called")
	}
	if resp != "ok" {
		t.Fatalf("unexpected handler resp: %v", resp)
	}
}

func TestInterceptor_AdminMethod_MissingToken(t *testing.T) {
	s := newInterceptorServer()

	info := &grpc.UnaryServerInfo{FullMethod: FullMethod(MethodRemoveExpired)}
	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		t.Fatal("handler should not be called when token missing")
		return nil, nil
	}

	_, err := s.accessTokenInterceptor(context.Background(), nil, info, h)
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", err)
	}
}

func TestInterceptor_AdminMethod_InvalidToken(t *testing.T) {
	s := newInterceptorServer()

	expired, err := auth.GenerateAdminToken("ops", []byte(testSecret), -time.Minute)
	if err != nil {
		t.Fatalf("GenerateAdminToken error: %v", err)
	}
	foreign, err := auth.GenerateAdminToken("ops", []byte("other-secret"), time.Hour)
	if err != nil {
		t.Fatalf("GenerateAdminToken error: %v", err)
	}

	for name, tok := range map[string]string{"garbage": "not.a.jwt", "expired": expired, "foreign": foreign} {
		t.Run(name, func(t *testing.T) {
			ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("access_token", tok))
			info := &grpc.UnaryServerInfo{FullMethod: FullMethod(MethodIssueToken)}
			h := func(ctx context.Context, req interface{}) (interface{}, error) {
				t.Fatal("handler should not be called with invalid token")
				return nil, nil
			}

			_, err := s.accessTokenInterceptor(ctx, nil, info, h)
			if status.Code(err) != codes.Unauthenticated {
				t.Fatalf("expected Unauthenticated, got %v", err)
			}
		})
	}
}

func TestInterceptor_AdminMethod_NonAdminToken(t *testing.T) {
	s := newInterceptorServer()

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("SignedString error: %v", err)
	}

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("access_token", tok))
	info := &grpc.UnaryServerInfo{FullMethod: FullMethod(MethodValidateToken)}
	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		t.Fatal("handler should not be called for non-admin token")
		return nil, nil
	}

	_, err = s.accessTokenInterceptor(ctx, nil, info, h)
	if status.Code(err) != codes.PermissionDenied {
		t.Fatalf("expected PermissionDenied, got %v", err)
	}
}

func TestInterceptor_AdminMethod_ValidToken_PutsSubjectInContext(t *testing.T) {
	s := newInterceptorServer()

	tok, err := auth.GenerateAdminToken("ops", []byte(testSecret), time.Hour)
	if err != nil {
		t.Fatalf("GenerateAdminToken error: %v", err)
	}

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("access_token", tok))
	info := &grpc.UnaryServerInfo{FullMethod: FullMethod(MethodRevokeUserTokens)}

	var got string
	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		got = adminSubject(ctx)
		return "ok", nil
	}

	if _, err := s.accessTokenInterceptor(ctx, nil, info, h); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ops" {
		t.Fatalf("admin subject = %q, want ops", got)
	}
}
