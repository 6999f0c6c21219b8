package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wonderfulrabbits/rabbitsapi/internal/common"
	"github.com/wonderfulrabbits/rabbitsapi/internal/logging"
	"github.com/wonderfulrabbits/rabbitsapi/internal/server/blobstore"
	"github.com/wonderfulrabbits/rabbitsapi/internal/server/models"
	"github.com/wonderfulrabbits/rabbitsapi/internal/server/repositories/repomanager"
	"go.opentelemetry.io/otel/attribute"
)

// ImageService keeps image metadata in the database and bytes in the blob
// store.
type ImageService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	blobs       blobstore.Store
	urlTTL      time.Duration
	log         logging.Logger
}

func NewImageService(db *sql.DB, m repomanager.RepositoryManager, blobs blobstore.Store, urlTTL time.Duration, log logging.Logger) *ImageService {
	return &ImageService{db: db, repomanager: m, blobs: blobs, urlTTL: urlTTL, log: log}
}

// ImageView is image metadata plus, when the blob store can sign URLs, a
// temporary download link.
type ImageView struct {
	*models.Image
	URL string
}

func (s *ImageService) Upload(ctx context.Context, req UploadImageRequest) (*models.Image, error) {
	ctx, span := tracer.Start(ctx, "ImageService.Upload")
	defer span.End()

	if err := validateStruct(req); err != nil {
		return nil, err
	}

	data, mt, err := decodeImage("base64_image_data", req.Base64ImageData)
	if err != nil {
		return nil, err
	}

	if _, err := s.repomanager.Rabbits(s.db).FindByID(ctx, req.RabbitID); err != nil {
		return nil, fmt.Errorf("rabbit %d: %w", req.RabbitID, err)
	}

	ext := req.FileExtension
	if ext == "" {
		ext = mt.Extension()
	}
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	key := blobstore.NewKey(req.RabbitID, ext)
	if err := s.blobs.Put(ctx, key, data, mt.String()); err != nil {
		return nil, fmt.Errorf("error storing image: %w", err)
	}

	img, err := s.repomanager.Images(s.db).Create(ctx, &models.Image{
		RabbitID:      req.RabbitID,
		Title:         req.Title,
		FileName:      req.FileName,
		FileExtension: ext,
		ContentType:   mt.String(),
		StorageKey:    key,
		Size:          int64(len(data)),
	})
	if err != nil {
		removeBlobs(ctx, s.blobs, s.log, []string{key})
		return nil, fmt.Errorf("error saving image: %w", err)
	}

	span.SetAttributes(attribute.Int64("image.id", img.ID), attribute.Int64("image.size", img.Size))
	return img, nil
}

// Get returns the image metadata and its bytes.
func (s *ImageService) Get(ctx context.Context, id int64) (*models.Image, []byte, error) {
	img, err := s.repomanager.Images(s.db).FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	data, err := s.blobs.Get(ctx, img.StorageKey)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			s.log.Error(ctx, "image blob missing", "image_id", id, "key", img.StorageKey)
			return nil, nil, fmt.Errorf("image %d data: %w", id, common.ErrorNotFound)
		}
		return nil, nil, fmt.Errorf("error loading image: %w", err)
	}
	return img, data, nil
}

// List returns metadata for every image. Presign failures leave URL empty.
func (s *ImageService) List(ctx context.Context) ([]ImageView, error) {
	imgs, err := s.repomanager.Images(s.db).List(ctx)
	if err != nil {
		return nil, err
	}

	signer, canSign := s.blobs.(blobstore.URLSigner)

	out := make([]ImageView, 0, len(imgs))
	for _, img := range imgs {
		v := ImageView{Image: img}
		if canSign {
			url, err := signer.PresignGet(ctx, img.StorageKey, s.urlTTL)
			if err != nil {
				s.log.Warn(ctx, "presign failed", "image_id", img.ID, "error", err)
			} else {
				v.URL = url
			}
		}
		out = append(out, v)
	}
	return out, nil
}
