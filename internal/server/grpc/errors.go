package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/carmeet/internal/common"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/durationpb"
)

// toStatus maps service errors to gRPC statuses. Token lifecycle errors
// carry the end-user reason as message; anything unexpected is logged and
// reported as Internal.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	var tooMany *common.TooManyRequestsError

	switch {
	case errors.Is(err, common.ErrInvalidToken):
		return status.Error(codes.Unauthenticated, common.Reason(err))
	case errors.Is(err, common.ErrTokenExpired):
		return status.Error(codes.FailedPrecondition, common.Reason(err))
	case errors.As(err, &tooMany):
		st := status.New(codes.ResourceExhausted, common.Reason(err))
		detailed, derr := st.WithDetails(&errdetails.RetryInfo{
			RetryDelay: durationpb.New(tooMany.RetryAfter(s.clock.Now())),
		})
		if derr != nil {
			return st.Err()
		}
		return detailed.Err()
	case errors.Is(err, common.ErrTooManyTokenRequests):
		return status.Error(codes.ResourceExhausted, common.Reason(err))
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "user not found")
	case errors.Is(err, common.ErrUserAlreadyActive):
		return status.Error(codes.AlreadyExists, "user already active")
	case errors.Is(err, common.ErrMalformedUserIdentity):
		return status.Error(codes.InvalidArgument, err.Error())
	}

	s.logger.Error(ctx, "request failed", "error", err)
	return status.Error(codes.Internal, common.ErrorInternal.Error())
}
