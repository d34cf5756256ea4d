package repository

import (
	"context"

	"github.com/petfm/server/models"
)

// RefreshTokenRepository is the persistence interface for refresh tokens.
//
// Rows are append-only: Revoke and RevokeIfActive flip the revoked flag,
// nothing ever deletes a row. RevokeIfActive is the rotation primitive:
// its conditional update succeeds for exactly one of any number of
// concurrent callers racing on the same row.
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	// GetActiveByToken looks a token up by its opaque string, skipping
	// revoked rows. Returns pkg.ErrNotFound when absent.
	GetActiveByToken(ctx context.Context, token string) (*models.RefreshToken, error)
	// RevokeIfActive marks the row revoked iff it is not already.
	// Returns true when this call performed the flip.
	RevokeIfActive(ctx context.Context, id string) (bool, error)
	// Revoke marks the row revoked unconditionally. Idempotent.
	Revoke(ctx context.Context, id string) error
}
