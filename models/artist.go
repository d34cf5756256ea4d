package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Artist is a catalog artist. AlbumCount is derived (COUNT over albums),
// not stored.
type Artist struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	AlbumCount int        `json:"album_count"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at"`
}

// ArtistDetail is an artist together with its albums, as returned by the
// detail endpoint and the paginated artist listing.
type ArtistDetail struct {
	Artist
	Albums []AlbumDetail `json:"albums"`
}

// CreateArtistRequest is the payload for creating or renaming an artist.
type CreateArtistRequest struct {
	Name string `json:"name"`
}

// Validate checks the artist name: 1-128 chars after trimming.
func (r *CreateArtistRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	n := utf8.RuneCountInString(r.Name)
	if n < 1 || n > 128 {
		return fmt.Errorf("artist name must be between 1 and 128 characters")
	}
	return nil
}
