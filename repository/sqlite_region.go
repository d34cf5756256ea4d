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

// sqliteRegionRepo is the SQLite implementation of RegionRepository.
type sqliteRegionRepo struct {
	db database.TxQuerier
}

// NewSQLiteRegionRepo returns a RegionRepository backed by SQLite.
func NewSQLiteRegionRepo(db database.TxQuerier) RegionRepository {
	return &sqliteRegionRepo{db: db}
}

func (r *sqliteRegionRepo) Upsert(ctx context.Context, region *models.Region) error {
	// Names are unique, a re-synced region keeps its id and flips active.
	query := `
		INSERT INTO regions (id, name, active)
		VALUES (lower(hex(randomblob(8))), ?, ?)
		ON CONFLICT(name) DO UPDATE SET active = excluded.active
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, region.Name, region.Active).
		Scan(&region.ID, &region.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert region: %w", err)
	}

	return nil
}

func (r *sqliteRegionRepo) GetByID(ctx context.Context, id string) (*models.Region, error) {
	query := `SELECT id, name, active, created_at FROM regions WHERE id = ?`

	region := &models.Region{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&region.ID, &region.Name, &region.Active, &region.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get region by id: %w", err)
	}

	return region, nil
}

func (r *sqliteRegionRepo) GetAll(ctx context.Context) ([]models.Region, error) {
	return r.list(ctx, `SELECT id, name, active, created_at FROM regions ORDER BY name ASC`)
}

func (r *sqliteRegionRepo) GetAllActive(ctx context.Context) ([]models.Region, error) {
	return r.list(ctx, `SELECT id, name, active, created_at FROM regions WHERE active = 1 ORDER BY name ASC`)
}

func (r *sqliteRegionRepo) list(ctx context.Context, query string) ([]models.Region, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get regions: %w", err)
	}
	defer rows.Close()

	var regions []models.Region
	for rows.Next() {
		var reg models.Region
		if err := rows.Scan(&reg.ID, &reg.Name, &reg.Active, &reg.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan region row: %w", err)
		}
		regions = append(regions, reg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating region rows: %w", err)
	}

	return regions, nil
}

func (r *sqliteRegionRepo) SetActive(ctx context.Context, id string, active bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE regions SET active = ? WHERE id = ?`, active, id)
	if err != nil {
		return fmt.Errorf("failed to set region active: %w", err)
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
