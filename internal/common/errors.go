// Package common defines shared constants and sentinel errors used across
// the server layers. Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
	"time"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Token lifecycle errors.
	ErrInvalidToken          = errors.New("invalid token")
	ErrTokenExpired          = errors.New("token expired")
	ErrTooManyTokenRequests  = errors.New("too many token requests")
	ErrUserAlreadyActive     = errors.New("user already active")
	ErrMalformedUserIdentity = errors.New("malformed user identifier")
)

// TooManyRequestsError is returned when a user asks for a new token before
// the throttle window of the previous request has elapsed.
type TooManyRequestsError struct {
	AvailableAt time.Time
}

func (e *TooManyRequestsError) Error() string {
	return fmt.Sprintf("%s: available at %s", ErrTooManyTokenRequests, e.AvailableAt.Format(time.RFC3339))
}

// Is makes errors.Is(err, ErrTooManyTokenRequests) hold.
func (e *TooManyRequestsError) Is(target error) bool {
	return target == ErrTooManyTokenRequests
}

// RetryAfter returns how long the caller has to wait, relative to now.
// It never returns a negative duration.
func (e *TooManyRequestsError) RetryAfter(now time.Time) time.Duration {
	d := e.AvailableAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// Reason returns the end-user message for token lifecycle errors and an
// empty string for anything else.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidToken):
		return "The secured link is invalid. Please try again."
	case errors.Is(err, ErrTokenExpired):
		return "The link in your email is expired. Please request a new one."
	case errors.Is(err, ErrTooManyTokenRequests):
		return "There is already a pending secured request. Please check your email or try again soon."
	}
	return ""
}
