package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/wonderfulrabbits/rabbitsapi/internal/common"
	"github.com/wonderfulrabbits/rabbitsapi/internal/dbx"
	"github.com/wonderfulrabbits/rabbitsapi/internal/logging"
	"github.com/wonderfulrabbits/rabbitsapi/internal/server/blobstore"
	"github.com/wonderfulrabbits/rabbitsapi/internal/server/models"
	"github.com/wonderfulrabbits/rabbitsapi/internal/server/repositories/repomanager"
)

type RabbitService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	blobs       blobstore.Store
	log         logging.Logger
}

func NewRabbitService(db *sql.DB, m repomanager.RepositoryManager, blobs blobstore.Store, log logging.Logger) *RabbitService {
	return &RabbitService{db: db, repomanager: m, blobs: blobs, log: log}
}

// Register creates a rabbit owned by req.UserID, or by caller when no
// owner is given.
func (s *RabbitService) Register(ctx context.Context, req RegisterRabbitRequest, caller *models.User) (*models.Rabbit, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	var owner int64
	switch {
	case req.UserID != nil:
		owner = *req.UserID
	case caller != nil:
		owner = caller.ID
	default:
		return nil, common.ErrorUnauthorized
	}

	r, err := s.repomanager.Rabbits(s.db).Create(ctx, &models.Rabbit{
		Name:      req.Name,
		Birthdate: req.Birthdate,
		UserID:    owner,
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("user %d: %w", owner, common.ErrorNotFound)
		}
		return nil, fmt.Errorf("error creating rabbit: %w", err)
	}
	return r, nil
}

func (s *RabbitService) Get(ctx context.Context, id int64) (*models.RabbitView, error) {
	return s.repomanager.Rabbits(s.db).GetView(ctx, id)
}

func (s *RabbitService) List(ctx context.Context) ([]*models.RabbitView, error) {
	return s.repomanager.Rabbits(s.db).ListViews(ctx)
}

// Update applies the present fields.
func (s *RabbitService) Update(ctx context.Context, id int64, req UpdateRabbitRequest) error {
	if err := validateStruct(req); err != nil {
		return err
	}

	repo := s.repomanager.Rabbits(s.db)
	r, err := repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if req.Name != nil {
		r.Name = *req.Name
	}
	if req.Birthdate != nil {
		r.Birthdate = req.Birthdate
	}

	return repo.Update(ctx, r)
}

// Delete removes the rabbit with its photos and images.
func (s *RabbitService) Delete(ctx context.Context, id int64) error {
	ctx, span := tracer.Start(ctx, "RabbitService.Delete")
	defer span.End()

	var keys []string
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		keys, err = s.repomanager.Images(tx).StorageKeysByRabbit(ctx, id)
		if err != nil {
			return err
		}
		return s.repomanager.Rabbits(tx).Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	removeBlobs(ctx, s.blobs, s.log, keys)
	return nil
}
