package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/resourcehub/internal/dbx"
	"github.com/dmitrijs2005/resourcehub/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/resourcehub/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/resourcehub/internal/server/repositories/refreshtokens"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	Profiles(db dbx.DBTX) profiles.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
}
