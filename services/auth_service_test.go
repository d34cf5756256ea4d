package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petfm/server/database"
	"github.com/petfm/server/models"
	"github.com/petfm/server/pkg"
	"github.com/petfm/server/repository"
)

// testClock drives the auth service's notion of time.
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestAuthService(t *testing.T) (*authService, *testClock) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := database.New(dbPath, database.EmbeddedMigrations)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	clock := &testClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}

	svc := &authService{
		db:            db.Conn,
		users:         repository.NewSQLiteUserRepo(db.Conn),
		refreshTokens: repository.NewSQLiteRefreshTokenRepo(db.Conn),
		jwtSecret:     []byte("test-secret"),
		accessTTL:     5 * time.Minute,
		refreshTTL:    7 * 24 * time.Hour,
		now:           clock.Now,
	}

	return svc, clock
}

func registerTestUser(t *testing.T, svc *authService, username string) {
	t.Helper()

	err := svc.Register(context.Background(), &models.RegisterRequest{
		Username: username,
		Password: "password123",
	})
	require.NoError(t, err)
}

func loginTestUser(t *testing.T, svc *authService, username string) *AuthTokens {
	t.Helper()

	registerTestUser(t, svc, username)
	tokens, err := svc.Login(context.Background(), &models.LoginRequest{
		Username: username,
		Password: "password123",
	})
	require.NoError(t, err)
	return tokens
}

func TestRegisterIssuesNoCredentials(t *testing.T) {
	svc, _ := newTestAuthService(t)

	registerTestUser(t, svc, "alice")

	// Registration only creates the account. No access token is signed
	// and no refresh token row is persisted until the user logs in.
	var sessions int
	require.NoError(t, svc.db.QueryRow(
		"SELECT COUNT(*) FROM refresh_tokens",
	).Scan(&sessions))
	assert.Equal(t, 0, sessions)

	user, err := svc.users.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc, _ := newTestAuthService(t)

	registerTestUser(t, svc, "alice")

	err := svc.Register(context.Background(), &models.RegisterRequest{
		Username: "alice",
		Password: "password123",
	})
	assert.ErrorIs(t, err, pkg.ErrAlreadyExists)
}

func TestRegisterRejectsInvalidInput(t *testing.T) {
	svc, _ := newTestAuthService(t)

	err := svc.Register(context.Background(), &models.RegisterRequest{
		Username: "al",
		Password: "password123",
	})
	assert.ErrorIs(t, err, pkg.ErrBadRequest)

	err = svc.Register(context.Background(), &models.RegisterRequest{
		Username: "alice",
		Password: "short",
	})
	assert.ErrorIs(t, err, pkg.ErrBadRequest)
}

func TestLogin(t *testing.T) {
	svc, _ := newTestAuthService(t)
	registerTestUser(t, svc, "alice")

	tokens, err := svc.Login(context.Background(), &models.LoginRequest{
		Username: "alice",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)

	_, err = svc.Login(context.Background(), &models.LoginRequest{
		Username: "alice",
		Password: "wrongpassword",
	})
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)

	_, err = svc.Login(context.Background(), &models.LoginRequest{
		Username: "nobody",
		Password: "password123",
	})
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)
}

func TestValidateAccessToken(t *testing.T) {
	svc, clock := newTestAuthService(t)
	tokens := loginTestUser(t, svc, "alice")

	claims, err := svc.ValidateAccessToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, models.TokenIssuer, claims.Issuer)

	// Still valid just inside the window.
	clock.Advance(4 * time.Minute)
	_, err = svc.ValidateAccessToken(tokens.AccessToken)
	assert.NoError(t, err)

	// Expired past five minutes.
	clock.Advance(2 * time.Minute)
	_, err = svc.ValidateAccessToken(tokens.AccessToken)
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)
}

func TestValidateAccessTokenRejectsGarbage(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, err := svc.ValidateAccessToken("not-a-jwt")
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)
}

func TestRefreshRotatesToken(t *testing.T) {
	svc, _ := newTestAuthService(t)
	tokens := loginTestUser(t, svc, "alice")

	rotated, err := svc.Refresh(context.Background(), tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, tokens.RefreshToken, rotated.RefreshToken)
	assert.Equal(t, int64(300), rotated.ExpiresIn)

	// A redeemed token is spent, the second presentation fails.
	_, err = svc.Refresh(context.Background(), tokens.RefreshToken)
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)

	// The replacement still works.
	_, err = svc.Refresh(context.Background(), rotated.RefreshToken)
	assert.NoError(t, err)
}

func TestRefreshChain(t *testing.T) {
	svc, _ := newTestAuthService(t)
	tokens := loginTestUser(t, svc, "alice")

	current := tokens.RefreshToken
	for i := 0; i < 5; i++ {
		rotated, err := svc.Refresh(context.Background(), current)
		require.NoError(t, err)
		current = rotated.RefreshToken
	}

	// Only the newest link of the chain is redeemable.
	_, err := svc.Refresh(context.Background(), tokens.RefreshToken)
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)
}

func TestRefreshUnknownToken(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, err := svc.Refresh(context.Background(), "deadbeef")
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)
}

func TestRefreshExpiredTokenIsTombstoned(t *testing.T) {
	svc, clock := newTestAuthService(t)
	tokens := loginTestUser(t, svc, "alice")

	clock.Advance(8 * 24 * time.Hour)

	_, err := svc.Refresh(context.Background(), tokens.RefreshToken)
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)

	// The expired token was revoked on sight: the row survives as an
	// audit trace but is no longer active, so a later presentation is
	// indistinguishable from an unknown token.
	_, err = svc.refreshTokens.GetActiveByToken(context.Background(), tokens.RefreshToken)
	assert.ErrorIs(t, err, pkg.ErrNotFound)

	var revoked bool
	err = svc.db.QueryRow(
		"SELECT revoked FROM refresh_tokens WHERE token = ?", tokens.RefreshToken,
	).Scan(&revoked)
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestLogout(t *testing.T) {
	svc, _ := newTestAuthService(t)
	tokens := loginTestUser(t, svc, "alice")

	require.NoError(t, svc.Logout(context.Background(), tokens.RefreshToken))

	_, err := svc.Refresh(context.Background(), tokens.RefreshToken)
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)

	// Repeat logout and unknown tokens are both no-ops.
	assert.NoError(t, svc.Logout(context.Background(), tokens.RefreshToken))
	assert.NoError(t, svc.Logout(context.Background(), "deadbeef"))
}

func TestCurrentUser(t *testing.T) {
	svc, _ := newTestAuthService(t)
	registerTestUser(t, svc, "alice")

	user, err := svc.CurrentUser(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, models.RoleUser, user.Role)

	_, err = svc.CurrentUser(context.Background(), "nobody")
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}
