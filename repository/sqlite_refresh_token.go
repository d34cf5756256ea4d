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

// sqliteRefreshTokenRepo is the SQLite implementation of RefreshTokenRepository.
type sqliteRefreshTokenRepo struct {
	db database.TxQuerier
}

// NewSQLiteRefreshTokenRepo returns a RefreshTokenRepository backed by SQLite.
func NewSQLiteRefreshTokenRepo(db database.TxQuerier) RefreshTokenRepository {
	return &sqliteRefreshTokenRepo{db: db}
}

func (r *sqliteRefreshTokenRepo) Create(ctx context.Context, token *models.RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (id, user_id, token, expires_at)
		VALUES (lower(hex(randomblob(8))), ?, ?, ?)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		token.UserID,
		token.Token,
		token.ExpiresAt,
	).Scan(&token.ID, &token.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create refresh token: %w", err)
	}

	return nil
}

func (r *sqliteRefreshTokenRepo) GetActiveByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	query := `
		SELECT id, user_id, token, expires_at, revoked, created_at
		FROM refresh_tokens WHERE token = ? AND revoked = 0`

	rt := &models.RefreshToken{}
	err := r.db.QueryRowContext(ctx, query, token).Scan(
		&rt.ID, &rt.UserID, &rt.Token, &rt.ExpiresAt, &rt.Revoked, &rt.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}

	return rt, nil
}

// RevokeIfActive is the single consistency point for rotation: the WHERE
// clause guards on the current revoked flag, so two callers racing on the
// same row see rows-affected 1 and 0 respectively.
func (r *sqliteRefreshTokenRepo) RevokeIfActive(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked = 1 WHERE id = ? AND revoked = 0`, id)
	if err != nil {
		return false, fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}

	return affected == 1, nil
}

func (r *sqliteRefreshTokenRepo) Revoke(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}
