package repomanager

import (
	"context"
	"database/sql"
	"strings"

	"github.com/dmitrijs2005/carmeet/internal/dbx"
	"github.com/dmitrijs2005/carmeet/internal/logging"
	"github.com/dmitrijs2005/carmeet/internal/server/migrations"
	"github.com/dmitrijs2005/carmeet/internal/server/repositories/tokenrequests"
	"github.com/dmitrijs2005/carmeet/internal/server/repositories/users"
	"github.com/dmitrijs2005/carmeet/internal/timex"
	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// SQLiteRepositoryManager vends SQLite-backed repositories for single-node
// deployments.
type SQLiteRepositoryManager struct {
	clock  timex.Clock
	logger goose.Logger
}

// SQLiteDSN turns a database file path into a modernc DSN that enables
// foreign keys on every connection, so the schema's ON DELETE CASCADE holds.
func SQLiteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)"
}

func NewSQLiteRepositoryManager(clock timex.Clock, logger logging.Logger) RepositoryManager {
	if clock == nil {
		clock = timex.SystemClock{}
	}
	return &SQLiteRepositoryManager{clock: clock, logger: newGooseLogger(logger)}
}

func (m *SQLiteRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) TokenRequests(db dbx.DBTX) tokenrequests.Repository[uuid.UUID] {
	return tokenrequests.NewSQLiteRepository(db, m.clock)
}

func (m *SQLiteRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.SQLite)
	goose.SetLogger(m.logger)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, "sqlite")
}
