package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/carmeet/internal/dbx"
	"github.com/dmitrijs2005/carmeet/internal/server/repositories/tokenrequests"
	"github.com/dmitrijs2005/carmeet/internal/server/repositories/users"
	"github.com/google/uuid"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	TokenRequests(db dbx.DBTX) tokenrequests.Repository[uuid.UUID]
}
