package tokenrequests

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/carmeet/internal/common"
	"github.com/dmitrijs2005/carmeet/internal/dbx"
	"github.com/dmitrijs2005/carmeet/internal/server/models"
	"github.com/dmitrijs2005/carmeet/internal/timex"
	"github.com/google/uuid"
)

// SQLiteRepository keeps token requests in a SQLite token_requests table.
// requested_at is stored as unix nanoseconds and expires_at as unix seconds,
// so "expires_at <= now" matches TokenRequest.IsExpired.
type SQLiteRepository struct {
	db    dbx.DBTX
	clock timex.Clock
}

var _ Repository[uuid.UUID] = (*SQLiteRepository)(nil)

func NewSQLiteRepository(db dbx.DBTX, clock timex.Clock) *SQLiteRepository {
	if clock == nil {
		clock = timex.SystemClock{}
	}
	return &SQLiteRepository{db: db, clock: clock}
}

func (r *SQLiteRepository) CreateTokenRequest(user uuid.UUID, expiresAt time.Time, selector, hashedToken string) *models.TokenRequest[uuid.UUID] {
	return models.NewTokenRequest(user, r.clock.Now(), expiresAt, selector, hashedToken)
}

func (r *SQLiteRepository) GetUserIdentifier(user uuid.UUID) string {
	return user.String()
}

func (r *SQLiteRepository) PersistTokenRequest(ctx context.Context, req *models.TokenRequest[uuid.UUID]) error {
	query := `INSERT INTO token_requests (user_id, selector, hashed_token, requested_at, expires_at)
			values (?, ?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query,
		req.User.String(), req.Selector, req.HashedToken, req.RequestedAt.UnixNano(), req.ExpiresAt.Unix())
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	req.ID = id
	return nil
}

func (r *SQLiteRepository) FindTokenRequest(ctx context.Context, selector string) (*models.TokenRequest[uuid.UUID], error) {
	query := `select id, user_id, selector, hashed_token, requested_at, expires_at
			from token_requests where selector = ?`

	req := &models.TokenRequest[uuid.UUID]{}
	var requestedAt, expiresAt int64
	err := r.db.QueryRowContext(ctx, query, selector).
		Scan(&req.ID, &req.User, &req.Selector, &req.HashedToken, &requestedAt, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	req.RequestedAt = time.Unix(0, requestedAt).UTC()
	req.ExpiresAt = time.Unix(expiresAt, 0).UTC()
	return req, nil
}

func (r *SQLiteRepository) GetMostRecentNonExpiredRequestDate(ctx context.Context, user uuid.UUID) (*time.Time, error) {
	query := `select requested_at, expires_at from token_requests
			where user_id = ? order by requested_at desc limit 1`

	var requestedAt, expiresAt int64
	err := r.db.QueryRowContext(ctx, query, user.String()).Scan(&requestedAt, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if expiresAt <= r.clock.Now().Unix() {
		return nil, nil
	}
	t := time.Unix(0, requestedAt).UTC()
	return &t, nil
}

func (r *SQLiteRepository) RemoveTokenRequest(ctx context.Context, user uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `delete from token_requests where user_id = ?`, user.String()); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) RemoveExpiredTokenRequests(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `delete from token_requests where expires_at <= ?`, r.clock.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
