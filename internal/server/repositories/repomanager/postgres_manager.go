// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/carmeet/internal/dbx"
	"github.com/dmitrijs2005/carmeet/internal/logging"
	"github.com/dmitrijs2005/carmeet/internal/server/migrations"
	"github.com/dmitrijs2005/carmeet/internal/server/repositories/tokenrequests"
	"github.com/dmitrijs2005/carmeet/internal/server/repositories/users"
	"github.com/dmitrijs2005/carmeet/internal/timex"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook.
type PostgresRepositoryManager struct {
	clock  timex.Clock
	logger goose.Logger
}

// Users returns a users.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

// TokenRequests returns a token request repository bound to the provided DBTX.
// All repositories share the manager's clock.
func (m *PostgresRepositoryManager) TokenRequests(db dbx.DBTX) tokenrequests.Repository[uuid.UUID] {
	return tokenrequests.NewPostgresRepository(db, m.clock)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(m.logger)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
// A nil clock means the system clock; migration output goes to logger and is
// dropped when logger is nil.
func NewPostgresRepositoryManager(clock timex.Clock, logger logging.Logger) RepositoryManager {
	if clock == nil {
		clock = timex.SystemClock{}
	}
	return &PostgresRepositoryManager{clock: clock, logger: newGooseLogger(logger)}
}
