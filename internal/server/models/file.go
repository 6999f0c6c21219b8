// Package models defines server-side data models persisted in the database.
package models

import "time"

// Photo is a rabbit picture stored inline in the database.
type Photo struct {
	ID        int64
	RabbitID  int64
	Title     string
	ImageData []byte
	DateAdded time.Time
}

// Image describes a rabbit picture whose bytes live in the blob store.
type Image struct {
	ID            int64
	RabbitID      int64
	Title         string
	FileName      string
	FileExtension string
	ContentType   string
	// StorageKey is the blob-store key (path) of the image bytes.
	StorageKey string
	Size       int64
	DateAdded  time.Time
}
