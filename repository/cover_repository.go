package repository

import (
	"context"

	"github.com/petfm/server/models"
)

// CoverRepository manages album cover metadata. The image bytes
// themselves live in object storage, only the key is persisted here.
type CoverRepository interface {
	Create(ctx context.Context, cover *models.Cover) error
	GetByID(ctx context.Context, id string) (*models.Cover, error)
	GetAllByAlbum(ctx context.Context, albumID string) ([]models.Cover, error)
	Delete(ctx context.Context, id string) error
}
