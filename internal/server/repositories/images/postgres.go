package images

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/wonderfulrabbits/rabbitsapi/internal/common"
	"github.com/wonderfulrabbits/rabbitsapi/internal/dbx"
	"github.com/wonderfulrabbits/rabbitsapi/internal/server/models"
)

// PostgresRepository stores image metadata; the bytes live in the blob store
// under StorageKey.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectColumns = `SELECT id, rabbit_id, title, file_name, file_extension, content_type, storage_key, size, date_added FROM images`

func (r *PostgresRepository) Create(ctx context.Context, image *models.Image) (*models.Image, error) {
	query :=
		`INSERT INTO images (rabbit_id, title, file_name, file_extension, content_type, storage_key, size)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, date_added
		 `

	err := r.db.QueryRowContext(ctx, query,
		image.RabbitID, image.Title, image.FileName, image.FileExtension, image.ContentType, image.StorageKey, image.Size).
		Scan(&image.ID, &image.DateAdded)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return image, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id int64) (*models.Image, error) {
	img, err := scanImage(r.db.QueryRowContext(ctx, selectColumns+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return img, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Image, error) {
	rows, err := r.db.QueryContext(ctx, selectColumns+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Image, 0)
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) StorageKeysByRabbit(ctx context.Context, rabbitID int64) ([]string, error) {
	return r.keys(ctx, `SELECT storage_key FROM images WHERE rabbit_id = $1`, rabbitID)
}

func (r *PostgresRepository) StorageKeysByUser(ctx context.Context, userID int64) ([]string, error) {
	return r.keys(ctx,
		`SELECT i.storage_key FROM images i JOIN rabbits r ON r.id = i.rabbit_id WHERE r.user_id = $1`, userID)
}

func (r *PostgresRepository) keys(ctx context.Context, query string, arg int64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return keys, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanImage(s scanner) (*models.Image, error) {
	img := &models.Image{}
	err := s.Scan(&img.ID, &img.RabbitID, &img.Title, &img.FileName, &img.FileExtension,
		&img.ContentType, &img.StorageKey, &img.Size, &img.DateAdded)
	if err != nil {
		return nil, err
	}
	return img, nil
}
