package photos

import (
	"context"

	"github.com/wonderfulrabbits/rabbitsapi/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, photo *models.Photo) (*models.Photo, error)
	FindByID(ctx context.Context, id int64) (*models.Photo, error)
	List(ctx context.Context) ([]*models.Photo, error)
}
