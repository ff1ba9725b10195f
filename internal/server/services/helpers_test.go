package services

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/carmeet/internal/common"
	"github.com/dmitrijs2005/carmeet/internal/dbx"
	"github.com/dmitrijs2005/carmeet/internal/logging"
	"github.com/dmitrijs2005/carmeet/internal/server/mailer"
	"github.com/dmitrijs2005/carmeet/internal/server/metrics"
	"github.com/dmitrijs2005/carmeet/internal/server/models"
	"github.com/dmitrijs2005/carmeet/internal/server/repositories/tokenrequests"
	"github.com/dmitrijs2005/carmeet/internal/server/repositories/users"
	"github.com/dmitrijs2005/carmeet/internal/server/security"
	"github.com/google/uuid"
)

const testSigningKey = "test-signing-key"

var t0 = time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// --- token helper fixture ---

type helperFixture struct {
	clock   *fakeClock
	repo    *tokenrequests.MemoryRepository[int]
	cleaner *TokenCleaner
	metrics *metrics.Metrics
	helper  *TokenHelper[int]
}

func newHelperFixture(t *testing.T, lifetime, throttle time.Duration) *helperFixture {
	t.Helper()
	clock := &fakeClock{now: t0}
	repo := tokenrequests.NewMemoryRepository[int](clock, strconv.Itoa)
	m := metrics.New()
	cleaner := NewTokenCleaner(repo, true, logging.Discard(), m)
	gen := security.NewTokenGenerator(testSigningKey, nil)
	return &helperFixture{
		clock:   clock,
		repo:    repo,
		cleaner: cleaner,
		metrics: m,
		helper:  NewTokenHelper[int](gen, cleaner, repo, clock, lifetime, throttle, logging.Discard(), m),
	}
}

type spyCleaner struct {
	calls  []bool
	err    error
	result int64
}

func (s *spyCleaner) HandleGarbageCollection(ctx context.Context, force bool) (int64, error) {
	s.calls = append(s.calls, force)
	return s.result, s.err
}

// failingRepo wraps a memory repository and fails selected operations.
type failingRepo struct {
	*tokenrequests.MemoryRepository[int]
	findErr    error
	persistErr error
	recentErr  error
	removeErr  error
}

func (f *failingRepo) FindTokenRequest(ctx context.Context, selector string) (*models.TokenRequest[int], error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.MemoryRepository.FindTokenRequest(ctx, selector)
}

func (f *failingRepo) PersistTokenRequest(ctx context.Context, r *models.TokenRequest[int]) error {
	if f.persistErr != nil {
		return f.persistErr
	}
	return f.MemoryRepository.PersistTokenRequest(ctx, r)
}

func (f *failingRepo) GetMostRecentNonExpiredRequestDate(ctx context.Context, user int) (*time.Time, error) {
	if f.recentErr != nil {
		return nil, f.recentErr
	}
	return f.MemoryRepository.GetMostRecentNonExpiredRequestDate(ctx, user)
}

func (f *failingRepo) RemoveTokenRequest(ctx context.Context, user int) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	return f.MemoryRepository.RemoveTokenRequest(ctx, user)
}

// --- activation fixture ---

type fakeUsersRepo struct {
	mu          sync.Mutex
	users       map[uuid.UUID]*models.User
	findErr     error
	activateErr error
}

func newFakeUsersRepo(us ...*models.User) *fakeUsersRepo {
	r := &fakeUsersRepo{users: make(map[uuid.UUID]*models.User)}
	for _, u := range us {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUsersRepo) Find(ctx context.Context, id uuid.UUID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUsersRepo) Activate(ctx context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.activateErr != nil {
		return r.activateErr
	}
	u, ok := r.users[id]
	if !ok || u.Active {
		return common.ErrUserAlreadyActive
	}
	u.Active = true
	u.ActivatedAt = &at
	return nil
}

type fakeRepoManager struct {
	users  *fakeUsersRepo
	tokens tokenrequests.Repository[uuid.UUID]
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository           { return m.users }
func (m *fakeRepoManager) TokenRequests(db dbx.DBTX) tokenrequests.Repository[uuid.UUID] {
	return m.tokens
}

type fakeMailer struct {
	sent []mailer.Message
	err  error
}

func (f *fakeMailer) Send(ctx context.Context, msg mailer.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

var errBoom = errors.New("boom")

// tamper flips the last character of a token.
func tamper(token string) string {
	return tamperAt(token, len(token)-1)
}

// tamperAt replaces the character at position i with a different
// alphanumeric one.
func tamperAt(token string, i int) string {
	repl := byte('a')
	if token[i] == 'a' {
		repl = 'b'
	}
	return token[:i] + string(repl) + token[i+1:]
}
