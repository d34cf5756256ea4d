// Package services holds the business logic layer.
//
// Services sit between handlers (HTTP) and repositories (DB). All rules
// live here: password hashing, token issuance and rotation, ownership
// checks. A service never sees http.Request and never runs SQL directly.
package services

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/petfm/server/database"
	"github.com/petfm/server/models"
	"github.com/petfm/server/pkg"
	"github.com/petfm/server/repository"
)

// AuthService issues, refreshes and revokes session credentials.
type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest) error
	Login(ctx context.Context, req *models.LoginRequest) (*AuthTokens, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthTokens, error)
	Logout(ctx context.Context, refreshToken string) error
	ValidateAccessToken(tokenString string) (*models.AccessClaims, error)
	CurrentUser(ctx context.Context, username string) (*models.User, error)
}

// AuthTokens is the credential pair returned by login and refresh.
// ExpiresIn is the access token lifetime in seconds.
type AuthTokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

type authService struct {
	db            *sql.DB
	users         repository.UserRepository
	refreshTokens repository.RefreshTokenRepository
	jwtSecret     []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// NewAuthService wires the auth service. accessTTL governs JWT expiry,
// refreshTTL governs how long a refresh token row stays redeemable.
func NewAuthService(
	db *sql.DB,
	users repository.UserRepository,
	refreshTokens repository.RefreshTokenRepository,
	jwtSecret string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	return &authService{
		db:            db,
		users:         users,
		refreshTokens: refreshTokens,
		jwtSecret:     []byte(jwtSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

// Register creates the account and nothing else. No tokens are issued,
// the new user logs in to obtain a credential pair.
func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		Role:         req.Role,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return err // may carry ErrAlreadyExists
	}

	return nil
}

func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*AuthTokens, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	user, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid username or password", pkg.ErrUnauthorized)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("%w: invalid username or password", pkg.ErrUnauthorized)
	}

	return s.issueTokens(ctx, s.refreshTokens, user)
}

// Refresh redeems a refresh token for a new credential pair. Redemption
// is single use: the presented token is revoked and a fresh one issued in
// its place. An expired token is tombstoned on sight, so the row stays in
// the table as an audit trace but can never be redeemed again.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*AuthTokens, error) {
	current, err := s.refreshTokens.GetActiveByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid refresh token", pkg.ErrUnauthorized)
		}
		return nil, err
	}

	if s.now().After(current.ExpiresAt) {
		if revokeErr := s.refreshTokens.Revoke(ctx, current.ID); revokeErr != nil {
			return nil, fmt.Errorf("failed to revoke expired refresh token: %w", revokeErr)
		}
		return nil, fmt.Errorf("%w: refresh token expired", pkg.ErrUnauthorized)
	}

	user, err := s.users.GetByID(ctx, current.UserID)
	if err != nil {
		return nil, err
	}

	// Revoke and reissue inside one transaction. RevokeIfActive is the
	// serialization point: of two callers racing on the same token,
	// exactly one sees rows-affected 1 and wins the rotation.
	var tokens *AuthTokens
	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		txRepo := repository.NewSQLiteRefreshTokenRepo(tx)

		revoked, err := txRepo.RevokeIfActive(ctx, current.ID)
		if err != nil {
			return fmt.Errorf("failed to revoke refresh token: %w", err)
		}
		if !revoked {
			return fmt.Errorf("%w: invalid refresh token", pkg.ErrUnauthorized)
		}

		tokens, err = s.issueTokens(ctx, txRepo, user)
		return err
	})
	if err != nil {
		return nil, err
	}

	return tokens, nil
}

// Logout revokes the presented refresh token. Unknown tokens are ignored,
// logout is idempotent.
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	current, err := s.refreshTokens.GetActiveByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return nil
		}
		return err
	}

	return s.refreshTokens.Revoke(ctx, current.ID)
}

func (s *authService) ValidateAccessToken(tokenString string) (*models.AccessClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.AccessClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithIssuer(models.TokenIssuer), jwt.WithTimeFunc(func() time.Time { return s.now() }))

	if err != nil {
		return nil, fmt.Errorf("%w: invalid token", pkg.ErrUnauthorized)
	}

	claims, ok := token.Claims.(*models.AccessClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token claims", pkg.ErrUnauthorized)
	}

	return claims, nil
}

func (s *authService) CurrentUser(ctx context.Context, username string) (*models.User, error) {
	return s.users.GetByUsername(ctx, username)
}

// issueTokens signs an access token and persists a new refresh token
// through the given repository, which may be transaction scoped.
func (s *authService) issueTokens(ctx context.Context, refreshRepo repository.RefreshTokenRepository, user *models.User) (*AuthTokens, error) {
	now := s.now()

	claims := &models.AccessClaims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			Issuer:    models.TokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}

	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	accessString, err := accessToken.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshBytes := make([]byte, 32)
	if _, err := rand.Read(refreshBytes); err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	refreshString := hex.EncodeToString(refreshBytes)

	refresh := &models.RefreshToken{
		UserID:    user.ID,
		Token:     refreshString,
		ExpiresAt: now.Add(s.refreshTTL),
	}

	if err := refreshRepo.Create(ctx, refresh); err != nil {
		return nil, fmt.Errorf("failed to create refresh token: %w", err)
	}

	return &AuthTokens{
		AccessToken:  accessString,
		RefreshToken: refreshString,
		ExpiresIn:    int64(s.accessTTL.Seconds()),
	}, nil
}
