package repomanager

import (
	"context"
	"database/sql"

	"github.com/filmood/keygate/internal/dbx"
	"github.com/filmood/keygate/internal/server/repositories/accounts"
	"github.com/filmood/keygate/internal/server/repositories/sessions"
)

// RepositoryManager vends repository implementations bound to a DBTX, so
// services can run the same repos against *sql.DB or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	Sessions(db dbx.DBTX) sessions.Repository
}
