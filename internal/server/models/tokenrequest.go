package models

import "time"

// TokenRequest is a persisted split-token request. Only the selector and the
// HMAC of the verifier are stored; the verifier itself never is.
//
// U is whatever the store uses to reference users.
type TokenRequest[U comparable] struct {
	ID          int64
	User        U
	Selector    string
	HashedToken string
	RequestedAt time.Time
	ExpiresAt   time.Time
}

// NewTokenRequest builds a request issued at requestedAt.
func NewTokenRequest[U comparable](user U, requestedAt, expiresAt time.Time, selector, hashedToken string) *TokenRequest[U] {
	return &TokenRequest[U]{
		User:        user,
		Selector:    selector,
		HashedToken: hashedToken,
		RequestedAt: requestedAt,
		ExpiresAt:   expiresAt,
	}
}

// IsExpired reports whether the expiry timestamp is at or before now.
// Comparison is done on unix seconds, the same precision the hash binds.
func (r *TokenRequest[U]) IsExpired(now time.Time) bool {
	return r.ExpiresAt.Unix() <= now.Unix()
}

// Token is what the issuing workflow hands to the end user.
type Token struct {
	PublicToken string
	ExpiresAt   time.Time
}
