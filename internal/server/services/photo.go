package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/wonderfulrabbits/rabbitsapi/internal/server/models"
	"github.com/wonderfulrabbits/rabbitsapi/internal/server/repositories/repomanager"
)

// PhotoService stores rabbit photos inline in the database.
type PhotoService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewPhotoService(db *sql.DB, m repomanager.RepositoryManager) *PhotoService {
	return &PhotoService{db: db, repomanager: m}
}

func (s *PhotoService) Upload(ctx context.Context, req UploadPhotoRequest) (*models.Photo, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	data, _, err := decodeImage("image_data", req.ImageData)
	if err != nil {
		return nil, err
	}

	if _, err := s.repomanager.Rabbits(s.db).FindByID(ctx, req.RabbitID); err != nil {
		return nil, fmt.Errorf("rabbit %d: %w", req.RabbitID, err)
	}

	p, err := s.repomanager.Photos(s.db).Create(ctx, &models.Photo{
		RabbitID:  req.RabbitID,
		Title:     req.Title,
		ImageData: data,
	})
	if err != nil {
		return nil, fmt.Errorf("error saving photo: %w", err)
	}
	return p, nil
}

func (s *PhotoService) Get(ctx context.Context, id int64) (*models.Photo, error) {
	return s.repomanager.Photos(s.db).FindByID(ctx, id)
}

func (s *PhotoService) List(ctx context.Context) ([]*models.Photo, error) {
	return s.repomanager.Photos(s.db).List(ctx)
}
