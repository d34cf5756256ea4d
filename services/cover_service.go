package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/petfm/server/models"
	"github.com/petfm/server/pkg"
	"github.com/petfm/server/pkg/cache"
	"github.com/petfm/server/repository"
	"github.com/petfm/server/storage"
	"github.com/petfm/server/ws"
)

// presignTTL is the lifetime of a presigned cover URL. The cache expires
// earlier so a cached URL always has usable time left on it.
const (
	presignTTL      = 30 * time.Minute
	presignCacheTTL = 25 * time.Minute
)

var allowedCoverTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// CoverService manages album cover images: the metadata rows and the
// image objects behind them.
type CoverService interface {
	Upload(ctx context.Context, albumID, filename, contentType string, body io.Reader) (*models.Cover, error)
	ListByAlbum(ctx context.Context, albumID string) ([]models.Cover, error)
	GetURL(ctx context.Context, id string) (string, error)
	Open(ctx context.Context, id string) (io.ReadCloser, error)
	Delete(ctx context.Context, id string) error
}

type coverService struct {
	covers repository.CoverRepository
	albums repository.AlbumRepository
	store  storage.ObjectStore
	urls   *cache.TTLCache[string, string]
	hub    ws.EventPublisher
}

func NewCoverService(
	covers repository.CoverRepository,
	albums repository.AlbumRepository,
	store storage.ObjectStore,
	hub ws.EventPublisher,
) CoverService {
	return &coverService{
		covers: covers,
		albums: albums,
		store:  store,
		urls:   cache.New[string, string](presignCacheTTL, 5*time.Minute),
		hub:    hub,
	}
}

// Upload stores the image under a collision-free key and records the
// cover row. The key keeps the original filename as a suffix so objects
// stay recognizable in the bucket.
func (s *coverService) Upload(ctx context.Context, albumID, filename, contentType string, body io.Reader) (*models.Cover, error) {
	if !allowedCoverTypes[contentType] {
		return nil, fmt.Errorf("%w: unsupported content type %s", pkg.ErrBadRequest, contentType)
	}

	if _, err := s.albums.GetByID(ctx, albumID); err != nil {
		return nil, err
	}

	filename = sanitizeFilename(filename)
	key := uuid.NewString() + "_" + filename

	if err := s.store.Put(ctx, key, contentType, body); err != nil {
		return nil, err
	}

	cover := &models.Cover{
		AlbumID:   albumID,
		ObjectKey: key,
	}
	if err := s.covers.Create(ctx, cover); err != nil {
		// Best effort: do not leave an orphaned object behind.
		_ = s.store.Delete(ctx, key)
		return nil, err
	}

	if url, err := s.presign(ctx, cover); err == nil {
		cover.URL = url
	}

	s.hub.BroadcastToAll(ws.Event{Op: ws.OpCoverUploaded, Data: cover})

	return cover, nil
}

// ListByAlbum returns the album's covers with presigned URLs filled in.
func (s *coverService) ListByAlbum(ctx context.Context, albumID string) ([]models.Cover, error) {
	covers, err := s.covers.GetAllByAlbum(ctx, albumID)
	if err != nil {
		return nil, err
	}

	for i := range covers {
		url, err := s.presign(ctx, &covers[i])
		if err != nil {
			return nil, err
		}
		covers[i].URL = url
	}

	return covers, nil
}

func (s *coverService) GetURL(ctx context.Context, id string) (string, error) {
	cover, err := s.covers.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return s.presign(ctx, cover)
}

// Open streams the raw image bytes, for clients that cannot follow a
// presigned URL.
func (s *coverService) Open(ctx context.Context, id string) (io.ReadCloser, error) {
	cover, err := s.covers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.store.Get(ctx, cover.ObjectKey)
}

func (s *coverService) Delete(ctx context.Context, id string) error {
	cover, err := s.covers.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, cover.ObjectKey); err != nil {
		return err
	}

	if err := s.covers.Delete(ctx, id); err != nil && !errors.Is(err, pkg.ErrNotFound) {
		return err
	}

	s.urls.Delete(id)

	s.hub.BroadcastToAll(ws.Event{Op: ws.OpCoverDeleted, Data: ws.DeletedData{ID: id}})

	return nil
}

func (s *coverService) presign(ctx context.Context, cover *models.Cover) (string, error) {
	if url, ok := s.urls.Get(cover.ID); ok {
		return url, nil
	}

	url, err := s.store.PresignGet(ctx, cover.ObjectKey, presignTTL)
	if err != nil {
		return "", err
	}

	s.urls.Set(cover.ID, url)
	return url, nil
}

// sanitizeFilename strips path separators and whitespace so the object
// key stays flat.
func sanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, " ", "_")
	if name == "" {
		name = "cover"
	}
	return name
}
