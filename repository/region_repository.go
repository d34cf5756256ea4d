package repository

import (
	"context"

	"github.com/petfm/server/models"
)

// RegionRepository manages the region list. Rows are owned by the
// periodic sync, Upsert and SetActive exist for its reconciliation pass.
type RegionRepository interface {
	Upsert(ctx context.Context, region *models.Region) error
	GetByID(ctx context.Context, id string) (*models.Region, error)
	GetAll(ctx context.Context) ([]models.Region, error)
	GetAllActive(ctx context.Context) ([]models.Region, error)
	SetActive(ctx context.Context, id string, active bool) error
}
