// Package tokenrequests declares the persistence contract for split-token
// requests and provides PostgreSQL and in-memory implementations.
package tokenrequests

import (
	"context"
	"time"

	"github.com/dmitrijs2005/carmeet/internal/server/models"
)

// Repository stores token requests for users of type U.
type Repository[U comparable] interface {
	// CreateTokenRequest builds a request stamped with the current time.
	// It does not touch storage.
	CreateTokenRequest(user U, expiresAt time.Time, selector, hashedToken string) *models.TokenRequest[U]

	// PersistTokenRequest stores the request and sets its ID. The request must
	// be visible to FindTokenRequest as soon as this returns.
	PersistTokenRequest(ctx context.Context, r *models.TokenRequest[U]) error

	// GetUserIdentifier returns the stable identifier mixed into the token hash.
	GetUserIdentifier(user U) string

	// FindTokenRequest looks a request up by selector. It returns
	// common.ErrorNotFound when there is none.
	FindTokenRequest(ctx context.Context, selector string) (*models.TokenRequest[U], error)

	// GetMostRecentNonExpiredRequestDate returns the RequestedAt of the user's
	// latest request, or nil when the user has none or the latest one expired.
	GetMostRecentNonExpiredRequestDate(ctx context.Context, user U) (*time.Time, error)

	// RemoveTokenRequest deletes every request of the user.
	RemoveTokenRequest(ctx context.Context, user U) error

	// RemoveExpiredTokenRequests deletes all expired requests and returns how
	// many were removed.
	RemoveExpiredTokenRequests(ctx context.Context) (int64, error)
}
