// Package db wires repository implementations to a shared database handle.
package db

import (
	"context"
	"database/sql"

	"github.com/mkarpenko/codepad/internal/server/refreshtokens"
	"github.com/mkarpenko/codepad/internal/server/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context) error
	Conn() *sql.DB
	Users() users.Repository
	RefreshTokens() refreshtokens.Repository
}
