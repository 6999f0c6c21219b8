package photos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/wonderfulrabbits/rabbitsapi/internal/common"
	"github.com/wonderfulrabbits/rabbitsapi/internal/dbx"
	"github.com/wonderfulrabbits/rabbitsapi/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, photo *models.Photo) (*models.Photo, error) {
	query :=
		`INSERT INTO photos (rabbit_id, title, image_data)
		 VALUES ($1, $2, $3)
		 RETURNING id, date_added
		 `

	err := r.db.QueryRowContext(ctx, query, photo.RabbitID, photo.Title, photo.ImageData).
		Scan(&photo.ID, &photo.DateAdded)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return photo, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id int64) (*models.Photo, error) {
	query := `SELECT id, rabbit_id, title, image_data, date_added FROM photos WHERE id = $1`

	p := &models.Photo{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.RabbitID, &p.Title, &p.ImageData, &p.DateAdded)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Photo, error) {
	query := `SELECT id, rabbit_id, title, image_data, date_added FROM photos ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Photo, 0)
	for rows.Next() {
		p := &models.Photo{}
		if err := rows.Scan(&p.ID, &p.RabbitID, &p.Title, &p.ImageData, &p.DateAdded); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
