package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/carmeet/internal/common"
	"github.com/dmitrijs2005/carmeet/internal/dbx"
	"github.com/dmitrijs2005/carmeet/internal/server/models"
	"github.com/google/uuid"
)

// SQLiteRepository reads users from SQLite, where timestamps are unix
// nanoseconds.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Find(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `select id, username, email, active, activated_at, created_at from users where id = ?`

	user := &models.User{}
	var activatedAt sql.NullInt64
	var createdAt int64
	err := r.db.QueryRowContext(ctx, query, id.String()).
		Scan(&user.ID, &user.UserName, &user.Email, &user.Active, &activatedAt, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	user.CreatedAt = time.Unix(0, createdAt).UTC()
	if activatedAt.Valid {
		t := time.Unix(0, activatedAt.Int64).UTC()
		user.ActivatedAt = &t
	}
	return user, nil
}

func (r *SQLiteRepository) Activate(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `update users set active = 1, activated_at = ? where id = ? and active = 0`

	res, err := r.db.ExecContext(ctx, query, at.UnixNano(), id.String())
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrUserAlreadyActive
	}
	return nil
}
