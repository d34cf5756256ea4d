package repository

import (
	"context"

	"github.com/petfm/server/models"
)

// AlbumRepository is the persistence interface for albums.
type AlbumRepository interface {
	Create(ctx context.Context, album *models.Album) error
	GetByID(ctx context.Context, id string) (*models.Album, error)
	GetPage(ctx context.Context, req models.PageRequest) ([]models.Album, int64, error)
	GetAllByArtist(ctx context.Context, artistID string) ([]models.Album, error)
	Update(ctx context.Context, album *models.Album) error
	Delete(ctx context.Context, id string) error
}
