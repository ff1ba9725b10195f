package tokenrequests

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/carmeet/internal/common"
	"github.com/dmitrijs2005/carmeet/internal/server/models"
	"github.com/dmitrijs2005/carmeet/internal/timex"
)

var ErrDuplicateSelector = errors.New("selector already exists")

// MemoryRepository keeps token requests in process memory. It is used when
// the server runs without a database and in tests.
type MemoryRepository[U comparable] struct {
	mu       sync.RWMutex
	requests map[string]models.TokenRequest[U]
	lastID   int64
	clock    timex.Clock
	identify func(U) string
}

// NewMemoryRepository creates an empty repository. identify maps a user to
// the identifier used in token hashes.
func NewMemoryRepository[U comparable](clock timex.Clock, identify func(U) string) *MemoryRepository[U] {
	if clock == nil {
		clock = timex.SystemClock{}
	}
	return &MemoryRepository[U]{
		requests: make(map[string]models.TokenRequest[U]),
		clock:    clock,
		identify: identify,
	}
}

func (r *MemoryRepository[U]) CreateTokenRequest(user U, expiresAt time.Time, selector, hashedToken string) *models.TokenRequest[U] {
	return models.NewTokenRequest(user, r.clock.Now(), expiresAt, selector, hashedToken)
}

func (r *MemoryRepository[U]) GetUserIdentifier(user U) string {
	return r.identify(user)
}

func (r *MemoryRepository[U]) PersistTokenRequest(ctx context.Context, req *models.TokenRequest[U]) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.requests[req.Selector]; ok {
		return ErrDuplicateSelector
	}
	r.lastID++
	req.ID = r.lastID
	r.requests[req.Selector] = *req
	return nil
}

func (r *MemoryRepository[U]) FindTokenRequest(ctx context.Context, selector string) (*models.TokenRequest[U], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	req, ok := r.requests[selector]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &req, nil
}

func (r *MemoryRepository[U]) GetMostRecentNonExpiredRequestDate(ctx context.Context, user U) (*time.Time, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *models.TokenRequest[U]
	for _, req := range r.requests {
		if req.User != user {
			continue
		}
		if latest == nil || req.RequestedAt.After(latest.RequestedAt) {
			latest = &req
		}
	}

	if latest == nil || latest.IsExpired(r.clock.Now()) {
		return nil, nil
	}
	return &latest.RequestedAt, nil
}

func (r *MemoryRepository[U]) RemoveTokenRequest(ctx context.Context, user U) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for selector, req := range r.requests {
		if req.User == user {
			delete(r.requests, selector)
		}
	}
	return nil
}

func (r *MemoryRepository[U]) RemoveExpiredTokenRequests(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	var removed int64
	for selector, req := range r.requests {
		if req.IsExpired(now) {
			delete(r.requests, selector)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of stored requests.
func (r *MemoryRepository[U]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.requests)
}
