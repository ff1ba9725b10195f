package tokenrequests

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/dmitrijs2005/carmeet/internal/common"
	"github.com/dmitrijs2005/carmeet/internal/timex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

var _ timex.Clock = (*fakeClock)(nil)

func newMemoryRepo(clock *fakeClock) *MemoryRepository[int] {
	return NewMemoryRepository[int](clock, strconv.Itoa)
}

func TestMemoryRepository_PersistAndFind(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: t0}
	repo := newMemoryRepo(clock)

	req := repo.CreateTokenRequest(42, t0.Add(time.Hour), "sel-1", "hash-1")
	assert.Equal(t, t0, req.RequestedAt)
	require.NoError(t, repo.PersistTokenRequest(ctx, req))
	assert.Equal(t, int64(1), req.ID)

	got, err := repo.FindTokenRequest(ctx, "sel-1")
	require.NoError(t, err)
	assert.Equal(t, 42, got.User)
	assert.Equal(t, "hash-1", got.HashedToken)
	assert.Equal(t, "42", repo.GetUserIdentifier(42))

	_, err = repo.FindTokenRequest(ctx, "nope")
	assert.True(t, errors.Is(err, common.ErrorNotFound))
}

func TestMemoryRepository_DuplicateSelector(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo(&fakeClock{now: t0})

	require.NoError(t, repo.PersistTokenRequest(ctx, repo.CreateTokenRequest(1, t0.Add(time.Hour), "dup", "a")))
	err := repo.PersistTokenRequest(ctx, repo.CreateTokenRequest(2, t0.Add(time.Hour), "dup", "b"))
	assert.ErrorIs(t, err, ErrDuplicateSelector)
	assert.Equal(t, 1, repo.Len())
}

func TestMemoryRepository_MostRecentNonExpired(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: t0}
	repo := newMemoryRepo(clock)

	got, err := repo.GetMostRecentNonExpiredRequestDate(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, repo.PersistTokenRequest(ctx, repo.CreateTokenRequest(1, t0.Add(time.Hour), "a", "h")))
	clock.Advance(10 * time.Minute)
	require.NoError(t, repo.PersistTokenRequest(ctx, repo.CreateTokenRequest(1, t0.Add(20*time.Minute), "b", "h")))
	require.NoError(t, repo.PersistTokenRequest(ctx, repo.CreateTokenRequest(2, t0.Add(time.Hour), "c", "h")))

	got, err = repo.GetMostRecentNonExpiredRequestDate(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, t0.Add(10*time.Minute), *got)

	// latest request expired; the older one is still live but is not consulted
	clock.now = t0.Add(20 * time.Minute)
	got, err = repo.GetMostRecentNonExpiredRequestDate(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryRepository_RemoveTokenRequest(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo(&fakeClock{now: t0})

	require.NoError(t, repo.PersistTokenRequest(ctx, repo.CreateTokenRequest(1, t0.Add(time.Hour), "a", "h")))
	require.NoError(t, repo.PersistTokenRequest(ctx, repo.CreateTokenRequest(1, t0.Add(time.Hour), "b", "h")))
	require.NoError(t, repo.PersistTokenRequest(ctx, repo.CreateTokenRequest(2, t0.Add(time.Hour), "c", "h")))

	require.NoError(t, repo.RemoveTokenRequest(ctx, 1))
	assert.Equal(t, 1, repo.Len())

	_, err := repo.FindTokenRequest(ctx, "a")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = repo.FindTokenRequest(ctx, "c")
	assert.NoError(t, err)

	// removing a user without requests is fine
	require.NoError(t, repo.RemoveTokenRequest(ctx, 99))
}

func TestMemoryRepository_RemoveExpired(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: t0}
	repo := newMemoryRepo(clock)

	for i, ttl := range []time.Duration{-time.Minute, 0, time.Second, time.Hour} {
		sel := "sel-" + strconv.Itoa(i)
		require.NoError(t, repo.PersistTokenRequest(ctx, repo.CreateTokenRequest(i%2, t0.Add(ttl), sel, "h")))
	}

	n, err := repo.RemoveExpiredTokenRequests(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, 2, repo.Len())

	n, err = repo.RemoveExpiredTokenRequests(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	clock.Advance(time.Second)
	n, err = repo.RemoveExpiredTokenRequests(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = repo.FindTokenRequest(ctx, "sel-3")
	assert.NoError(t, err)
}
