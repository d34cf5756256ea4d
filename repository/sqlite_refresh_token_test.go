package repository

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petfm/server/database"
	"github.com/petfm/server/models"
	"github.com/petfm/server/pkg"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := database.New(dbPath, database.EmbeddedMigrations)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db
}

func createTestUser(t *testing.T, db *database.DB, username string) *models.User {
	t.Helper()

	user := &models.User{
		Username:     username,
		PasswordHash: "$2a$12$test",
		Role:         models.RoleUser,
	}
	require.NoError(t, NewSQLiteUserRepo(db.Conn).Create(context.Background(), user))
	return user
}

func TestRefreshTokenCreateAndGet(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewSQLiteRefreshTokenRepo(db.Conn)
	user := createTestUser(t, db, "alice")

	token := &models.RefreshToken{
		UserID:    user.ID,
		Token:     "aabbccdd",
		ExpiresAt: time.Now().Add(time.Hour).UTC(),
	}
	require.NoError(t, repo.Create(ctx, token))
	assert.NotEmpty(t, token.ID)
	assert.False(t, token.CreatedAt.IsZero())

	got, err := repo.GetActiveByToken(ctx, "aabbccdd")
	require.NoError(t, err)
	assert.Equal(t, token.ID, got.ID)
	assert.Equal(t, user.ID, got.UserID)
	assert.False(t, got.Revoked)
}

func TestRefreshTokenGetActiveSkipsRevoked(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewSQLiteRefreshTokenRepo(db.Conn)
	user := createTestUser(t, db, "alice")

	token := &models.RefreshToken{
		UserID:    user.ID,
		Token:     "aabbccdd",
		ExpiresAt: time.Now().Add(time.Hour).UTC(),
	}
	require.NoError(t, repo.Create(ctx, token))
	require.NoError(t, repo.Revoke(ctx, token.ID))

	_, err := repo.GetActiveByToken(ctx, "aabbccdd")
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestRefreshTokenGetActiveUnknown(t *testing.T) {
	db := newTestDB(t)
	repo := NewSQLiteRefreshTokenRepo(db.Conn)

	_, err := repo.GetActiveByToken(context.Background(), "missing")
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestRevokeIfActiveFlipsExactlyOnce(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewSQLiteRefreshTokenRepo(db.Conn)
	user := createTestUser(t, db, "alice")

	token := &models.RefreshToken{
		UserID:    user.ID,
		Token:     "aabbccdd",
		ExpiresAt: time.Now().Add(time.Hour).UTC(),
	}
	require.NoError(t, repo.Create(ctx, token))

	// The first caller wins the conditional update, every later caller
	// sees rows-affected zero.
	won, err := repo.RevokeIfActive(ctx, token.ID)
	require.NoError(t, err)
	assert.True(t, won)

	won, err = repo.RevokeIfActive(ctx, token.ID)
	require.NoError(t, err)
	assert.False(t, won)
}

func TestRevokeIfActiveSingleWinnerUnderContention(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewSQLiteRefreshTokenRepo(db.Conn)
	user := createTestUser(t, db, "alice")

	// One shared connection serializes the writes at the pool, so the
	// outcome is decided only by the conditional update.
	db.Conn.SetMaxOpenConns(1)

	token := &models.RefreshToken{
		UserID:    user.ID,
		Token:     "aabbccdd",
		ExpiresAt: time.Now().Add(time.Hour).UTC(),
	}
	require.NoError(t, repo.Create(ctx, token))

	const callers = 16
	wins := make(chan bool, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			won, err := repo.RevokeIfActive(ctx, token.ID)
			assert.NoError(t, err)
			wins <- won
		}()
	}
	wg.Wait()
	close(wins)

	winners := 0
	for won := range wins {
		if won {
			winners++
		}
	}
	assert.Equal(t, 1, winners, "exactly one caller may win the rotation")
}

func TestRevokeIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewSQLiteRefreshTokenRepo(db.Conn)
	user := createTestUser(t, db, "alice")

	token := &models.RefreshToken{
		UserID:    user.ID,
		Token:     "aabbccdd",
		ExpiresAt: time.Now().Add(time.Hour).UTC(),
	}
	require.NoError(t, repo.Create(ctx, token))

	require.NoError(t, repo.Revoke(ctx, token.ID))
	require.NoError(t, repo.Revoke(ctx, token.ID))
	require.NoError(t, repo.Revoke(ctx, "missing-id"))
}

func TestRevokedRowIsNeverDeleted(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewSQLiteRefreshTokenRepo(db.Conn)
	user := createTestUser(t, db, "alice")

	token := &models.RefreshToken{
		UserID:    user.ID,
		Token:     "aabbccdd",
		ExpiresAt: time.Now().Add(time.Hour).UTC(),
	}
	require.NoError(t, repo.Create(ctx, token))
	require.NoError(t, repo.Revoke(ctx, token.ID))

	var count int
	require.NoError(t, db.Conn.QueryRow(
		"SELECT COUNT(*) FROM refresh_tokens WHERE id = ?", token.ID,
	).Scan(&count))
	assert.Equal(t, 1, count)
}
