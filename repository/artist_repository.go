package repository

import (
	"context"

	"github.com/petfm/server/models"
)

// ArtistRepository is the persistence interface for artists.
type ArtistRepository interface {
	Create(ctx context.Context, artist *models.Artist) error
	GetByID(ctx context.Context, id string) (*models.Artist, error)
	// GetPage returns one page of artists ordered by name, with the total
	// row count. nameFilter, when non-empty, is matched as a substring.
	GetPage(ctx context.Context, nameFilter string, req models.PageRequest) ([]models.Artist, int64, error)
	Update(ctx context.Context, artist *models.Artist) error
	Delete(ctx context.Context, id string) error
}
