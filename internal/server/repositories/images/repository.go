package images

import (
	"context"

	"github.com/wonderfulrabbits/rabbitsapi/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, image *models.Image) (*models.Image, error)
	FindByID(ctx context.Context, id int64) (*models.Image, error)
	List(ctx context.Context) ([]*models.Image, error)
	// StorageKeysByRabbit and StorageKeysByUser list the blobs that a
	// cascading delete of the rabbit / user would orphan.
	StorageKeysByRabbit(ctx context.Context, rabbitID int64) ([]string, error)
	StorageKeysByUser(ctx context.Context, userID int64) ([]string, error)
}
