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

// sqliteCoverRepo is the SQLite implementation of CoverRepository.
type sqliteCoverRepo struct {
	db database.TxQuerier
}

// NewSQLiteCoverRepo returns a CoverRepository backed by SQLite.
func NewSQLiteCoverRepo(db database.TxQuerier) CoverRepository {
	return &sqliteCoverRepo{db: db}
}

func (r *sqliteCoverRepo) Create(ctx context.Context, cover *models.Cover) error {
	query := `
		INSERT INTO covers (id, album_id, object_key)
		VALUES (lower(hex(randomblob(8))), ?, ?)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, cover.AlbumID, cover.ObjectKey).
		Scan(&cover.ID, &cover.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create cover: %w", err)
	}

	return nil
}

func (r *sqliteCoverRepo) GetByID(ctx context.Context, id string) (*models.Cover, error) {
	query := `SELECT id, album_id, object_key, created_at FROM covers WHERE id = ?`

	cover := &models.Cover{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&cover.ID, &cover.AlbumID, &cover.ObjectKey, &cover.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cover by id: %w", err)
	}

	return cover, nil
}

func (r *sqliteCoverRepo) GetAllByAlbum(ctx context.Context, albumID string) ([]models.Cover, error) {
	query := `
		SELECT id, album_id, object_key, created_at
		FROM covers WHERE album_id = ? ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, albumID)
	if err != nil {
		return nil, fmt.Errorf("failed to get covers by album: %w", err)
	}
	defer rows.Close()

	var covers []models.Cover
	for rows.Next() {
		var c models.Cover
		if err := rows.Scan(&c.ID, &c.AlbumID, &c.ObjectKey, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cover row: %w", err)
		}
		covers = append(covers, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cover rows: %w", err)
	}

	return covers, nil
}

func (r *sqliteCoverRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM covers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete cover: %w", err)
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
