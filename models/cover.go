package models

import "time"

// Cover is an album cover image stored in object storage. ObjectKey is the
// storage key ("<uuid>_<original filename>"); URL is a presigned download
// link filled in at read time, never persisted.
type Cover struct {
	ID        string    `json:"id"`
	AlbumID   string    `json:"album_id"`
	ObjectKey string    `json:"object_key"`
	URL       string    `json:"url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
