package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Album is a catalog album. ArtistID and RegionID are optional, an album
// can exist before being attributed to an artist or a region.
type Album struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	ArtistID  *string    `json:"artist_id"`
	RegionID  *string    `json:"region_id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

// AlbumDetail is an album together with its covers (each enriched with a
// presigned download URL).
type AlbumDetail struct {
	Album
	Covers []Cover `json:"covers"`
}

// CreateAlbumRequest is the payload for creating an album.
type CreateAlbumRequest struct {
	Name     string  `json:"name"`
	ArtistID *string `json:"artist_id"`
	RegionID *string `json:"region_id"`
}

// Validate checks the album name: 1-128 chars after trimming.
func (r *CreateAlbumRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	n := utf8.RuneCountInString(r.Name)
	if n < 1 || n > 128 {
		return fmt.Errorf("album name must be between 1 and 128 characters")
	}
	return nil
}

// UpdateAlbumRequest is the payload for a partial album update.
// Nil fields are left unchanged.
type UpdateAlbumRequest struct {
	Name     *string `json:"name"`
	ArtistID *string `json:"artist_id"`
	RegionID *string `json:"region_id"`
}

// Validate checks the fields that are present.
func (r *UpdateAlbumRequest) Validate() error {
	if r.Name != nil {
		trimmed := strings.TrimSpace(*r.Name)
		n := utf8.RuneCountInString(trimmed)
		if n < 1 || n > 128 {
			return fmt.Errorf("album name must be between 1 and 128 characters")
		}
		r.Name = &trimmed
	}
	return nil
}
