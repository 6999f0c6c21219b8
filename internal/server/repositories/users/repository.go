// Package users is the credential store: persistence of user accounts.
package users

import (
	"context"

	"github.com/wonderfulrabbits/rabbitsapi/internal/server/models"
)

// Repository persists users. Lookups by username are exact and
// case-sensitive. Missing rows yield common.ErrorNotFound and a username
// clash yields common.ErrDuplicateUsername.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	List(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id int64) error
}
