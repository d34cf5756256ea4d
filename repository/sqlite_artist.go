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

// sqliteArtistRepo is the SQLite implementation of ArtistRepository.
type sqliteArtistRepo struct {
	db database.TxQuerier
}

// NewSQLiteArtistRepo returns an ArtistRepository backed by SQLite.
func NewSQLiteArtistRepo(db database.TxQuerier) ArtistRepository {
	return &sqliteArtistRepo{db: db}
}

func (r *sqliteArtistRepo) Create(ctx context.Context, artist *models.Artist) error {
	query := `
		INSERT INTO artists (id, name)
		VALUES (lower(hex(randomblob(8))), ?)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, artist.Name).Scan(&artist.ID, &artist.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create artist: %w", err)
	}

	return nil
}

func (r *sqliteArtistRepo) GetByID(ctx context.Context, id string) (*models.Artist, error) {
	query := `
		SELECT a.id, a.name, a.created_at, a.updated_at,
		       (SELECT COUNT(*) FROM albums WHERE artist_id = a.id)
		FROM artists a WHERE a.id = ?`

	artist := &models.Artist{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&artist.ID, &artist.Name, &artist.CreatedAt, &artist.UpdatedAt, &artist.AlbumCount,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get artist by id: %w", err)
	}

	return artist, nil
}

func (r *sqliteArtistRepo) GetPage(ctx context.Context, nameFilter string, req models.PageRequest) ([]models.Artist, int64, error) {
	filter := "%" + nameFilter + "%"

	var total int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM artists WHERE name LIKE ?`, filter,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count artists: %w", err)
	}

	query := `
		SELECT a.id, a.name, a.created_at, a.updated_at,
		       (SELECT COUNT(*) FROM albums WHERE artist_id = a.id)
		FROM artists a
		WHERE a.name LIKE ?
		ORDER BY a.name ASC
		LIMIT ? OFFSET ?`

	rows, err := r.db.QueryContext(ctx, query, filter, req.Size, req.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get artists page: %w", err)
	}
	defer rows.Close()

	var artists []models.Artist
	for rows.Next() {
		var a models.Artist
		if err := rows.Scan(&a.ID, &a.Name, &a.CreatedAt, &a.UpdatedAt, &a.AlbumCount); err != nil {
			return nil, 0, fmt.Errorf("failed to scan artist row: %w", err)
		}
		artists = append(artists, a)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating artist rows: %w", err)
	}

	return artists, total, nil
}

func (r *sqliteArtistRepo) Update(ctx context.Context, artist *models.Artist) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE artists SET name = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		artist.Name, artist.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update artist: %w", err)
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

func (r *sqliteArtistRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM artists WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete artist: %w", err)
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
