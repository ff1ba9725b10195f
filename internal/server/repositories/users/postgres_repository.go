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

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Find(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query :=
		`SELECT id, username, email, active, activated_at, created_at FROM users
		 WHERE id = $1
		 `

	user := &models.User{}
	var activatedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&user.ID, &user.UserName, &user.Email, &user.Active, &activatedAt, &user.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if activatedAt.Valid {
		user.ActivatedAt = &activatedAt.Time
	}

	return user, nil
}

// Activate flips the active flag. It returns common.ErrUserAlreadyActive when
// no inactive user with this id exists.
func (r *PostgresRepository) Activate(ctx context.Context, id uuid.UUID, at time.Time) error {
	query :=
		`UPDATE users SET active = TRUE, activated_at = $2
		 WHERE id = $1 AND active = FALSE
		 `

	res, err := r.db.ExecContext(ctx, query, id, at)
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
