package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petfm/server/models"
	"github.com/petfm/server/pkg"
)

func TestArtistPagination(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewSQLiteArtistRepo(db.Conn)

	for i := 0; i < 25; i++ {
		artist := &models.Artist{Name: fmt.Sprintf("artist-%02d", i)}
		require.NoError(t, repo.Create(ctx, artist))
	}

	first, total, err := repo.GetPage(ctx, "", models.PageRequest{Page: 0, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(25), total)
	assert.Len(t, first, 10)
	assert.Equal(t, "artist-00", first[0].Name)

	last, total, err := repo.GetPage(ctx, "", models.PageRequest{Page: 2, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(25), total)
	assert.Len(t, last, 5)

	// Substring filter narrows both the page and the total.
	filtered, total, err := repo.GetPage(ctx, "artist-1", models.PageRequest{Page: 0, Size: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(10), total)
	assert.Len(t, filtered, 10)
}

func TestArtistUpdateAndDelete(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewSQLiteArtistRepo(db.Conn)

	artist := &models.Artist{Name: "original"}
	require.NoError(t, repo.Create(ctx, artist))

	artist.Name = "renamed"
	require.NoError(t, repo.Update(ctx, artist))

	got, err := repo.GetByID(ctx, artist.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)
	assert.NotNil(t, got.UpdatedAt)

	require.NoError(t, repo.Delete(ctx, artist.ID))
	assert.ErrorIs(t, repo.Delete(ctx, artist.ID), pkg.ErrNotFound)
}

func TestAlbumArtistReferenceNullsOnDelete(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	artistRepo := NewSQLiteArtistRepo(db.Conn)
	albumRepo := NewSQLiteAlbumRepo(db.Conn)

	artist := &models.Artist{Name: "band"}
	require.NoError(t, artistRepo.Create(ctx, artist))

	album := &models.Album{Name: "debut", ArtistID: &artist.ID}
	require.NoError(t, albumRepo.Create(ctx, album))

	require.NoError(t, artistRepo.Delete(ctx, artist.ID))

	got, err := albumRepo.GetByID(ctx, album.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ArtistID, "artist reference should null out, not cascade")
}

func TestCoverCascadesWithAlbum(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	albumRepo := NewSQLiteAlbumRepo(db.Conn)
	coverRepo := NewSQLiteCoverRepo(db.Conn)

	album := &models.Album{Name: "debut"}
	require.NoError(t, albumRepo.Create(ctx, album))

	cover := &models.Cover{AlbumID: album.ID, ObjectKey: "key-1"}
	require.NoError(t, coverRepo.Create(ctx, cover))

	require.NoError(t, albumRepo.Delete(ctx, album.ID))

	_, err := coverRepo.GetByID(ctx, cover.ID)
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestRegionUpsertKeepsIdentity(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewSQLiteRegionRepo(db.Conn)

	region := &models.Region{Name: "REGIONAL DE NORTE", Active: true}
	require.NoError(t, repo.Upsert(ctx, region))
	firstID := region.ID

	require.NoError(t, repo.SetActive(ctx, firstID, false))

	// Re-syncing the same name reactivates the existing row.
	again := &models.Region{Name: "REGIONAL DE NORTE", Active: true}
	require.NoError(t, repo.Upsert(ctx, again))
	assert.Equal(t, firstID, again.ID)

	got, err := repo.GetByID(ctx, firstID)
	require.NoError(t, err)
	assert.True(t, got.Active)
}

func TestRegionActiveListing(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewSQLiteRegionRepo(db.Conn)

	active := &models.Region{Name: "REGIONAL DE SUL", Active: true}
	require.NoError(t, repo.Upsert(ctx, active))
	inactive := &models.Region{Name: "REGIONAL DE LESTE", Active: false}
	require.NoError(t, repo.Upsert(ctx, inactive))

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	onlyActive, err := repo.GetAllActive(ctx)
	require.NoError(t, err)
	require.Len(t, onlyActive, 1)
	assert.Equal(t, "REGIONAL DE SUL", onlyActive[0].Name)
}
