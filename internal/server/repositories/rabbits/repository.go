package rabbits

import (
	"context"

	"github.com/wonderfulrabbits/rabbitsapi/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, rabbit *models.Rabbit) (*models.Rabbit, error)
	FindByID(ctx context.Context, id int64) (*models.Rabbit, error)
	GetView(ctx context.Context, id int64) (*models.RabbitView, error)
	ListViews(ctx context.Context) ([]*models.RabbitView, error)
	Update(ctx context.Context, rabbit *models.Rabbit) error
	Delete(ctx context.Context, id int64) error
}
