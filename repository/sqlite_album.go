package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/petfm/server/database"
	"github.com/petfm/server/models"
	"github.com/petfm/server/pkg"
)

// sqliteAlbumRepo is the SQLite implementation of AlbumRepository.
type sqliteAlbumRepo struct {
	db database.TxQuerier
}

// NewSQLiteAlbumRepo returns an AlbumRepository backed by SQLite.
func NewSQLiteAlbumRepo(db database.TxQuerier) AlbumRepository {
	return &sqliteAlbumRepo{db: db}
}

func (r *sqliteAlbumRepo) Create(ctx context.Context, album *models.Album) error {
	query := `
		INSERT INTO albums (id, name, artist_id, region_id)
		VALUES (lower(hex(randomblob(8))), ?, ?, ?)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		album.Name,
		album.ArtistID,
		album.RegionID,
	).Scan(&album.ID, &album.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create album: %w", err)
	}

	return nil
}

func (r *sqliteAlbumRepo) GetByID(ctx context.Context, id string) (*models.Album, error) {
	query := `
		SELECT id, name, artist_id, region_id, created_at, updated_at
		FROM albums WHERE id = ?`

	album := &models.Album{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&album.ID, &album.Name, &album.ArtistID, &album.RegionID,
		&album.CreatedAt, &album.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get album by id: %w", err)
	}

	return album, nil
}

func (r *sqliteAlbumRepo) GetPage(ctx context.Context, req models.PageRequest) ([]models.Album, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM albums`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count albums: %w", err)
	}

	query := `
		SELECT id, name, artist_id, region_id, created_at, updated_at
		FROM albums ORDER BY name ASC LIMIT ? OFFSET ?`

	rows, err := r.db.QueryContext(ctx, query, req.Size, req.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get albums page: %w", err)
	}
	defer rows.Close()

	albums, err := scanAlbums(rows)
	if err != nil {
		return nil, 0, err
	}

	return albums, total, nil
}

func (r *sqliteAlbumRepo) GetAllByArtist(ctx context.Context, artistID string) ([]models.Album, error) {
	query := `
		SELECT id, name, artist_id, region_id, created_at, updated_at
		FROM albums WHERE artist_id = ? ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query, artistID)
	if err != nil {
		return nil, fmt.Errorf("failed to get albums by artist: %w", err)
	}
	defer rows.Close()

	return scanAlbums(rows)
}

func (r *sqliteAlbumRepo) Update(ctx context.Context, album *models.Album) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE albums SET name = ?, artist_id = ?, region_id = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		album.Name, album.ArtistID, album.RegionID, album.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update album: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return pkg.ErrNotFound
	}

	return nil
}

func (r *sqliteAlbumRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM albums WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete album: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return pkg.ErrNotFound
	}

	return nil
}

func scanAlbums(rows *sql.Rows) ([]models.Album, error) {
	var albums []models.Album
	for rows.Next() {
		var a models.Album
		if err := rows.Scan(&a.ID, &a.Name, &a.ArtistID, &a.RegionID, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan album row: %w", err)
		}
		albums = append(albums, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating album rows: %w", err)
	}

	return albums, nil
}
