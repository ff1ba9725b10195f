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

// PostgresRepository keeps token requests in the token_requests table over
// dbx.DBTX (satisfied by *sql.DB or *sql.Tx). "Now" always comes from the
// clock and is passed to queries as a parameter.
type PostgresRepository struct {
	db    dbx.DBTX
	clock timex.Clock
}

var _ Repository[uuid.UUID] = (*PostgresRepository)(nil)

func NewPostgresRepository(db dbx.DBTX, clock timex.Clock) *PostgresRepository {
	if clock == nil {
		clock = timex.SystemClock{}
	}
	return &PostgresRepository{db: db, clock: clock}
}

func (r *PostgresRepository) CreateTokenRequest(user uuid.UUID, expiresAt time.Time, selector, hashedToken string) *models.TokenRequest[uuid.UUID] {
	return models.NewTokenRequest(user, r.clock.Now(), expiresAt, selector, hashedToken)
}

func (r *PostgresRepository) GetUserIdentifier(user uuid.UUID) string {
	return user.String()
}

func (r *PostgresRepository) PersistTokenRequest(ctx context.Context, req *models.TokenRequest[uuid.UUID]) error {
	query := `
		INSERT INTO token_requests (user_id, selector, hashed_token, requested_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		req.User, req.Selector, req.HashedToken, req.RequestedAt, req.ExpiresAt).Scan(&req.ID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) FindTokenRequest(ctx context.Context, selector string) (*models.TokenRequest[uuid.UUID], error) {
	query := `
		SELECT id, user_id, selector, hashed_token, requested_at, expires_at
		FROM token_requests
		WHERE selector = $1
	`
	req := &models.TokenRequest[uuid.UUID]{}
	err := r.db.QueryRowContext(ctx, query, selector).
		Scan(&req.ID, &req.User, &req.Selector, &req.HashedToken, &req.RequestedAt, &req.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return req, nil
}

func (r *PostgresRepository) GetMostRecentNonExpiredRequestDate(ctx context.Context, user uuid.UUID) (*time.Time, error) {
	query := `
		SELECT requested_at, expires_at
		FROM token_requests
		WHERE user_id = $1
		ORDER BY requested_at DESC
		LIMIT 1
	`
	req := &models.TokenRequest[uuid.UUID]{User: user}
	err := r.db.QueryRowContext(ctx, query, user).Scan(&req.RequestedAt, &req.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if req.IsExpired(r.clock.Now()) {
		return nil, nil
	}
	return &req.RequestedAt, nil
}

func (r *PostgresRepository) RemoveTokenRequest(ctx context.Context, user uuid.UUID) error {
	query := `
		DELETE FROM token_requests
		WHERE user_id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) RemoveExpiredTokenRequests(ctx context.Context) (int64, error) {
	query := `
		DELETE FROM token_requests
		WHERE expires_at <= $1
	`
	res, err := r.db.ExecContext(ctx, query, r.clock.Now())
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
