package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/tegenaria/internal/dbx"
	"github.com/dmitrijs2005/tegenaria/internal/server/repositories/apartments"
	"github.com/dmitrijs2005/tegenaria/internal/server/repositories/roles"
	"github.com/dmitrijs2005/tegenaria/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Roles(db dbx.DBTX) roles.Repository
	Apartments(db dbx.DBTX) apartments.Repository
}
