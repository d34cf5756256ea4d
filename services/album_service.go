package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/petfm/server/models"
	"github.com/petfm/server/pkg"
	"github.com/petfm/server/repository"
	"github.com/petfm/server/ws"
)

// AlbumService manages the album catalog.
type AlbumService interface {
	Create(ctx context.Context, req *models.CreateAlbumRequest) (*models.Album, error)
	GetPage(ctx context.Context, pageReq models.PageRequest) (*models.Page[models.Album], error)
	GetDetail(ctx context.Context, id string) (*models.AlbumDetail, error)
	GetAllByArtist(ctx context.Context, artistID string) ([]models.AlbumDetail, error)
	Update(ctx context.Context, id string, req *models.UpdateAlbumRequest) (*models.Album, error)
	Delete(ctx context.Context, id string) error
}

type albumService struct {
	albums  repository.AlbumRepository
	artists repository.ArtistRepository
	regions repository.RegionRepository
	covers  CoverService
	hub     ws.EventPublisher
}

func NewAlbumService(
	albums repository.AlbumRepository,
	artists repository.ArtistRepository,
	regions repository.RegionRepository,
	covers CoverService,
	hub ws.EventPublisher,
) AlbumService {
	return &albumService{
		albums:  albums,
		artists: artists,
		regions: regions,
		covers:  covers,
		hub:     hub,
	}
}

func (s *albumService) Create(ctx context.Context, req *models.CreateAlbumRequest) (*models.Album, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	if err := s.checkReferences(ctx, req.ArtistID, req.RegionID); err != nil {
		return nil, err
	}

	album := &models.Album{
		Name:     req.Name,
		ArtistID: req.ArtistID,
		RegionID: req.RegionID,
	}
	if err := s.albums.Create(ctx, album); err != nil {
		return nil, err
	}

	s.hub.BroadcastToAll(ws.Event{Op: ws.OpAlbumCreated, Data: album})

	return album, nil
}

func (s *albumService) GetPage(ctx context.Context, pageReq models.PageRequest) (*models.Page[models.Album], error) {
	albums, total, err := s.albums.GetPage(ctx, pageReq)
	if err != nil {
		return nil, err
	}

	page := models.NewPage(albums, total, pageReq)
	return &page, nil
}

func (s *albumService) GetDetail(ctx context.Context, id string) (*models.AlbumDetail, error) {
	album, err := s.albums.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	covers, err := s.covers.ListByAlbum(ctx, id)
	if err != nil {
		return nil, err
	}

	return &models.AlbumDetail{
		Album:  *album,
		Covers: covers,
	}, nil
}

func (s *albumService) GetAllByArtist(ctx context.Context, artistID string) ([]models.AlbumDetail, error) {
	albums, err := s.albums.GetAllByArtist(ctx, artistID)
	if err != nil {
		return nil, err
	}

	details := make([]models.AlbumDetail, 0, len(albums))
	for _, album := range albums {
		covers, err := s.covers.ListByAlbum(ctx, album.ID)
		if err != nil {
			return nil, err
		}
		details = append(details, models.AlbumDetail{Album: album, Covers: covers})
	}

	return details, nil
}

func (s *albumService) Update(ctx context.Context, id string, req *models.UpdateAlbumRequest) (*models.Album, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	album, err := s.albums.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		album.Name = *req.Name
	}
	if req.ArtistID != nil {
		album.ArtistID = req.ArtistID
	}
	if req.RegionID != nil {
		album.RegionID = req.RegionID
	}

	if err := s.checkReferences(ctx, album.ArtistID, album.RegionID); err != nil {
		return nil, err
	}

	if err := s.albums.Update(ctx, album); err != nil {
		return nil, err
	}

	updated, err := s.albums.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.hub.BroadcastToAll(ws.Event{Op: ws.OpAlbumUpdated, Data: updated})

	return updated, nil
}

// Delete removes the album. Its covers cascade away in the database,
// their stored objects are cleaned up first.
func (s *albumService) Delete(ctx context.Context, id string) error {
	covers, err := s.covers.ListByAlbum(ctx, id)
	if err != nil {
		return err
	}
	for _, cover := range covers {
		if err := s.covers.Delete(ctx, cover.ID); err != nil && !errors.Is(err, pkg.ErrNotFound) {
			return err
		}
	}

	if err := s.albums.Delete(ctx, id); err != nil {
		return err
	}

	s.hub.BroadcastToAll(ws.Event{Op: ws.OpAlbumDeleted, Data: ws.DeletedData{ID: id}})

	return nil
}

// checkReferences verifies that a referenced artist or region exists.
func (s *albumService) checkReferences(ctx context.Context, artistID, regionID *string) error {
	if artistID != nil {
		if _, err := s.artists.GetByID(ctx, *artistID); err != nil {
			if errors.Is(err, pkg.ErrNotFound) {
				return fmt.Errorf("%w: artist %s does not exist", pkg.ErrBadRequest, *artistID)
			}
			return err
		}
	}
	if regionID != nil {
		if _, err := s.regions.GetByID(ctx, *regionID); err != nil {
			if errors.Is(err, pkg.ErrNotFound) {
				return fmt.Errorf("%w: region %s does not exist", pkg.ErrBadRequest, *regionID)
			}
			return err
		}
	}
	return nil
}
