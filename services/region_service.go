package services

import (
	"context"

	"github.com/petfm/server/models"
	"github.com/petfm/server/repository"
)

// RegionService exposes the region list. Regions are read-only through
// the API, their rows are owned by the periodic sync.
type RegionService interface {
	GetAll(ctx context.Context) ([]models.Region, error)
	GetAllActive(ctx context.Context) ([]models.Region, error)
	GetByID(ctx context.Context, id string) (*models.Region, error)
}

type regionService struct {
	regions repository.RegionRepository
}

func NewRegionService(regions repository.RegionRepository) RegionService {
	return &regionService{regions: regions}
}

func (s *regionService) GetAll(ctx context.Context) ([]models.Region, error) {
	regions, err := s.regions.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if regions == nil {
		regions = []models.Region{}
	}
	return regions, nil
}

func (s *regionService) GetAllActive(ctx context.Context) ([]models.Region, error) {
	regions, err := s.regions.GetAllActive(ctx)
	if err != nil {
		return nil, err
	}
	if regions == nil {
		regions = []models.Region{}
	}
	return regions, nil
}

func (s *regionService) GetByID(ctx context.Context, id string) (*models.Region, error) {
	return s.regions.GetByID(ctx, id)
}
