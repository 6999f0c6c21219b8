package repomanager

import (
	"context"
	"database/sql"

	"github.com/wonderfulrabbits/rabbitsapi/internal/dbx"
	"github.com/wonderfulrabbits/rabbitsapi/internal/server/repositories/images"
	"github.com/wonderfulrabbits/rabbitsapi/internal/server/repositories/photos"
	"github.com/wonderfulrabbits/rabbitsapi/internal/server/repositories/rabbits"
	"github.com/wonderfulrabbits/rabbitsapi/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Rabbits(db dbx.DBTX) rabbits.Repository
	Photos(db dbx.DBTX) photos.Repository
	Images(db dbx.DBTX) images.Repository
}
