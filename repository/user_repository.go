// Package repository defines the data-access interfaces and their SQLite
// implementations. Services depend on the interfaces, never on SQL.
package repository

import (
	"context"

	"github.com/petfm/server/models"
)

// UserRepository is the persistence interface for principals.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}
