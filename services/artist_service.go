package services

import (
	"context"
	"fmt"

	"github.com/petfm/server/models"
	"github.com/petfm/server/pkg"
	"github.com/petfm/server/repository"
	"github.com/petfm/server/ws"
)

// ArtistService manages the artist catalog.
type ArtistService interface {
	Create(ctx context.Context, req *models.CreateArtistRequest) (*models.Artist, error)
	GetPage(ctx context.Context, pageReq models.PageRequest, nameFilter string) (*models.Page[models.Artist], error)
	GetDetail(ctx context.Context, id string) (*models.ArtistDetail, error)
	Update(ctx context.Context, id string, req *models.CreateArtistRequest) (*models.Artist, error)
	Delete(ctx context.Context, id string) error
}

type artistService struct {
	artists repository.ArtistRepository
	albums  AlbumService
	hub     ws.EventPublisher
}

func NewArtistService(
	artists repository.ArtistRepository,
	albums AlbumService,
	hub ws.EventPublisher,
) ArtistService {
	return &artistService{
		artists: artists,
		albums:  albums,
		hub:     hub,
	}
}

func (s *artistService) Create(ctx context.Context, req *models.CreateArtistRequest) (*models.Artist, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	artist := &models.Artist{Name: req.Name}
	if err := s.artists.Create(ctx, artist); err != nil {
		return nil, err
	}

	s.hub.BroadcastToAll(ws.Event{Op: ws.OpArtistCreated, Data: artist})

	return artist, nil
}

func (s *artistService) GetPage(ctx context.Context, pageReq models.PageRequest, nameFilter string) (*models.Page[models.Artist], error) {
	artists, total, err := s.artists.GetPage(ctx, nameFilter, pageReq)
	if err != nil {
		return nil, err
	}

	page := models.NewPage(artists, total, pageReq)
	return &page, nil
}

// GetDetail returns the artist with its albums, covers included.
func (s *artistService) GetDetail(ctx context.Context, id string) (*models.ArtistDetail, error) {
	artist, err := s.artists.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	albums, err := s.albums.GetAllByArtist(ctx, id)
	if err != nil {
		return nil, err
	}

	return &models.ArtistDetail{
		Artist: *artist,
		Albums: albums,
	}, nil
}

func (s *artistService) Update(ctx context.Context, id string, req *models.CreateArtistRequest) (*models.Artist, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	artist, err := s.artists.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	artist.Name = req.Name
	if err := s.artists.Update(ctx, artist); err != nil {
		return nil, err
	}

	updated, err := s.artists.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.hub.BroadcastToAll(ws.Event{Op: ws.OpArtistUpdated, Data: updated})

	return updated, nil
}

// Delete removes the artist. Albums keep their rows, the foreign key
// nulls out their artist reference.
func (s *artistService) Delete(ctx context.Context, id string) error {
	if err := s.artists.Delete(ctx, id); err != nil {
		return err
	}

	s.hub.BroadcastToAll(ws.Event{Op: ws.OpArtistDeleted, Data: ws.DeletedData{ID: id}})

	return nil
}
