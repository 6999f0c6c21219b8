package rest

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wonderfulrabbits/rabbitsapi/internal/server/models"
	"github.com/wonderfulrabbits/rabbitsapi/internal/server/services"
)

type photoResponse struct {
	ID        int64     `json:"id"`
	RabbitID  int64     `json:"rabbit_id"`
	Title     string    `json:"title"`
	ImageData []byte    `json:"image_data"`
	DateAdded time.Time `json:"date_added"`
}

func newPhotoResponse(p *models.Photo) photoResponse {
	return photoResponse{
		ID:        p.ID,
		RabbitID:  p.RabbitID,
		Title:     p.Title,
		ImageData: p.ImageData,
		DateAdded: p.DateAdded,
	}
}

type imageResponse struct {
	ID              int64     `json:"id"`
	RabbitID        int64     `json:"rabbit_id"`
	Title           string    `json:"title"`
	FileName        string    `json:"file_name"`
	FileExtension   string    `json:"file_extension"`
	ContentType     string    `json:"content_type"`
	Size            int64     `json:"size"`
	DateAdded       time.Time `json:"date_added"`
	URL             string    `json:"url,omitempty"`
	Base64ImageData []byte    `json:"base64_image_data,omitempty"`
}

func newImageResponse(img *models.Image) imageResponse {
	return imageResponse{
		ID:            img.ID,
		RabbitID:      img.RabbitID,
		Title:         img.Title,
		FileName:      img.FileName,
		FileExtension: img.FileExtension,
		ContentType:   img.ContentType,
		Size:          img.Size,
		DateAdded:     img.DateAdded,
	}
}

func (s *Server) uploadPhoto(c *gin.Context) {
	var req services.UploadPhotoRequest
	if err := bindJSON(c, &req); err != nil {
		s.fail(c, err)
		return
	}

	p, err := s.svc.Photos.Upload(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, createdResponse{Message: "Photo successfully added", ID: p.ID})
}

func (s *Server) listPhotos(c *gin.Context) {
	photos, err := s.svc.Photos.List(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}

	out := make([]photoResponse, 0, len(photos))
	for _, p := range photos {
		out = append(out, newPhotoResponse(p))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) getPhoto(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.fail(c, err)
		return
	}

	p, err := s.svc.Photos.Get(c.Request.Context(), id)
	if err != nil {
		s.fail(c, fmt.Errorf("photo %d: %w", id, err))
		return
	}
	c.JSON(http.StatusOK, newPhotoResponse(p))
}

func (s *Server) uploadImage(c *gin.Context) {
	var req services.UploadImageRequest
	if err := bindJSON(c, &req); err != nil {
		s.fail(c, err)
		return
	}

	img, err := s.svc.Images.Upload(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, createdResponse{Message: "Image successfully added", ID: img.ID})
}

func (s *Server) listImages(c *gin.Context) {
	images, err := s.svc.Images.List(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}

	out := make([]imageResponse, 0, len(images))
	for _, v := range images {
		r := newImageResponse(v.Image)
		r.URL = v.URL
		out = append(out, r)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) getImage(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.fail(c, err)
		return
	}

	img, data, err := s.svc.Images.Get(c.Request.Context(), id)
	if err != nil {
		s.fail(c, fmt.Errorf("image %d: %w", id, err))
		return
	}

	r := newImageResponse(img)
	r.Base64ImageData = data
	c.JSON(http.StatusOK, r)
}
