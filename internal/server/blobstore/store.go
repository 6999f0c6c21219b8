// Package blobstore keeps uploaded image bytes outside the database, either
// in an S3-compatible bucket or on the local filesystem.
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by Get for a missing key.
var ErrNotFound = errors.New("blob not found")

// Store saves and loads opaque blobs by key.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// URLSigner is implemented by stores that can hand out temporary direct
// download links.
type URLSigner interface {
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// NewKey builds a unique storage key for an image of rabbitID. ext may be
// given with or without the leading dot.
func NewKey(rabbitID int64, ext string) string {
	d := time.Now().UTC()
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	key := fmt.Sprintf("images/%d/%d/%02d/%v", rabbitID, d.Year(), d.Month(), uuid.New())
	if ext != "" {
		key += "." + ext
	}
	return key
}
