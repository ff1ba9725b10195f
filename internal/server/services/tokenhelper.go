// Package services contains server-side business logic: the token request
// lifecycle (TokenHelper, TokenCleaner) and the account activation flow
// built on top of it.
package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/carmeet/internal/common"
	"github.com/dmitrijs2005/carmeet/internal/logging"
	"github.com/dmitrijs2005/carmeet/internal/server/metrics"
	"github.com/dmitrijs2005/carmeet/internal/server/models"
	"github.com/dmitrijs2005/carmeet/internal/server/repositories/tokenrequests"
	"github.com/dmitrijs2005/carmeet/internal/server/security"
	"github.com/dmitrijs2005/carmeet/internal/timex"
)

// TokenCreator derives token components. *security.TokenGenerator implements it.
type TokenCreator interface {
	CreateToken(expiresAt time.Time, userIdentifier string, verifier string) (*security.TokenComponents, error)
}

// GarbageCollector is implemented by *TokenCleaner.
type GarbageCollector interface {
	HandleGarbageCollection(ctx context.Context, force bool) (int64, error)
}

const publicTokenLength = 2 * security.RandomStringLength

// TokenHelper issues, validates and invalidates split tokens for users of
// type U.
type TokenHelper[U comparable] struct {
	generator TokenCreator
	cleaner   GarbageCollector
	repo      tokenrequests.Repository[U]
	clock     timex.Clock
	lifetime  time.Duration
	throttle  time.Duration
	logger    logging.Logger
	metrics   *metrics.Metrics
}

func NewTokenHelper[U comparable](
	generator TokenCreator,
	cleaner GarbageCollector,
	repo tokenrequests.Repository[U],
	clock timex.Clock,
	lifetime, throttle time.Duration,
	logger logging.Logger,
	m *metrics.Metrics,
) *TokenHelper[U] {
	if clock == nil {
		clock = timex.SystemClock{}
	}
	return &TokenHelper[U]{
		generator: generator,
		cleaner:   cleaner,
		repo:      repo,
		clock:     clock,
		lifetime:  lifetime,
		throttle:  throttle,
		logger:    logger.With("module", "tokens"),
		metrics:   m,
	}
}

// GenerateToken issues a new token for user. It fails with a
// *common.TooManyRequestsError while the user's latest live request is
// younger than the throttle time.
//
// The expiry is truncated to whole seconds, the precision bound by the hash.
func (h *TokenHelper[U]) GenerateToken(ctx context.Context, user U) (*models.Token, error) {
	h.collectGarbage(ctx)

	now := h.clock.Now()

	last, err := h.repo.GetMostRecentNonExpiredRequestDate(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("error looking up pending token requests: %w", err)
	}
	if last != nil {
		availableAt := last.Add(h.throttle)
		if availableAt.After(now) {
			h.metrics.TokenThrottled()
			return nil, &common.TooManyRequestsError{AvailableAt: availableAt}
		}
	}

	expiresAt := now.Add(h.lifetime).Truncate(time.Second)

	components, err := h.generator.CreateToken(expiresAt, h.repo.GetUserIdentifier(user), "")
	if err != nil {
		return nil, err
	}

	req := h.repo.CreateTokenRequest(user, expiresAt, components.Selector, components.HashedToken)
	if err := h.repo.PersistTokenRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("error saving token request: %w", err)
	}

	h.metrics.TokenIssued()
	h.logger.Debug(ctx, "token issued", "request_id", req.ID, "expires_at", expiresAt)

	return &models.Token{PublicToken: components.PublicToken(), ExpiresAt: expiresAt}, nil
}

// ValidateTokenAndFetchUser returns the owner of a valid, unexpired token.
// The request is left in place; callers that consume the token remove it.
func (h *TokenHelper[U]) ValidateTokenAndFetchUser(ctx context.Context, fullToken string) (U, error) {
	var zero U

	h.collectGarbage(ctx)

	if len(fullToken) != publicTokenLength {
		h.metrics.TokenValidated(metrics.ResultInvalid)
		return zero, common.ErrInvalidToken
	}

	selector := fullToken[:security.RandomStringLength]
	verifier := fullToken[security.RandomStringLength:]

	req, err := h.findRequest(ctx, selector)
	if err != nil {
		if errors.Is(err, common.ErrInvalidToken) {
			h.metrics.TokenValidated(metrics.ResultInvalid)
		} else {
			h.metrics.TokenValidated(metrics.ResultError)
		}
		return zero, err
	}

	if req.IsExpired(h.clock.Now()) {
		h.metrics.TokenValidated(metrics.ResultExpired)
		return zero, common.ErrTokenExpired
	}

	components, err := h.generator.CreateToken(req.ExpiresAt, h.repo.GetUserIdentifier(req.User), verifier)
	if err != nil {
		h.metrics.TokenValidated(metrics.ResultError)
		return zero, err
	}

	if subtle.ConstantTimeCompare([]byte(components.HashedToken), []byte(req.HashedToken)) != 1 {
		h.metrics.TokenValidated(metrics.ResultInvalid)
		return zero, common.ErrInvalidToken
	}

	h.metrics.TokenValidated(metrics.ResultValid)
	return req.User, nil
}

// RemoveTokenRequest invalidates every request of the user owning fullToken.
func (h *TokenHelper[U]) RemoveTokenRequest(ctx context.Context, fullToken string) error {
	if len(fullToken) < security.RandomStringLength {
		return common.ErrInvalidToken
	}

	req, err := h.findRequest(ctx, fullToken[:security.RandomStringLength])
	if err != nil {
		return err
	}

	return h.RemoveUserTokenRequests(ctx, req.User)
}

func (h *TokenHelper[U]) RemoveUserTokenRequests(ctx context.Context, user U) error {
	if err := h.repo.RemoveTokenRequest(ctx, user); err != nil {
		return fmt.Errorf("error removing token requests: %w", err)
	}
	return nil
}

// TokenLifetime returns the configured lifetime in seconds.
func (h *TokenHelper[U]) TokenLifetime() int {
	return int(h.lifetime / time.Second)
}

func (h *TokenHelper[U]) findRequest(ctx context.Context, selector string) (*models.TokenRequest[U], error) {
	req, err := h.repo.FindTokenRequest(ctx, selector)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, fmt.Errorf("error searching token request: %w", err)
	}
	return req, nil
}

// collectGarbage runs an opportunistic pass. A failing pass must not fail
// the operation that triggered it.
func (h *TokenHelper[U]) collectGarbage(ctx context.Context) {
	if _, err := h.cleaner.HandleGarbageCollection(ctx, false); err != nil {
		h.logger.Warn(ctx, "garbage collection failed", "error", err)
	}
}
