package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Lopega12/sirorko-code-challenge/internal/auth"
	"github.com/Lopega12/sirorko-code-challenge/internal/domain"
	"github.com/Lopega12/sirorko-code-challenge/internal/repository"
	apperrors "github.com/Lopega12/sirorko-code-challenge/pkg/errors"
	"github.com/google/uuid"
)

// bcryptCost is deliberately above the library default.
const bcryptCost = 12

// UserService implements registration, login, logout, and token validation.
type UserService struct {
	users  repository.UserRepository
	tokens repository.TokenStore
	jwt    *auth.JWTManager
	logger *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(
	users repository.UserRepository,
	tokens repository.TokenStore,
	jwt *auth.JWTManager,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		users:  users,
		tokens: tokens,
		jwt:    jwt,
		logger: logger,
	}
}

// Register creates a new account with a bcrypt-hashed password.
func (s *UserService) Register(ctx context.Context, email, name, password string) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Name:         name,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.String("user_id", user.ID.String()),
	)

	return user, nil
}

// Login verifies credentials and issues an access token. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", nil, apperrors.Unauthorized("invalid credentials")
		}
		return "", nil, fmt.Errorf("load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, apperrors.Unauthorized("invalid credentials")
	}

	token, err := s.jwt.GenerateToken(user.ID, user.Email)
	if err != nil {
		return "", nil, fmt.Errorf("generate token: %w", err)
	}

	return token, user, nil
}

// Logout revokes the presented token by recording its jti until the token's
// natural expiry. Already-expired tokens are a no-op.
func (s *UserService) Logout(ctx context.Context, rawToken string) error {
	claims, err := s.jwt.ExtractClaims(rawToken)
	if err != nil {
		return apperrors.Unauthorized("invalid token")
	}
	if claims.ID == "" || claims.ExpiresAt == nil {
		return apperrors.Unauthorized("token missing jti or exp")
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if err := s.tokens.Revoke(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}

	s.logger.InfoContext(ctx, "token revoked",
		slog.String("jti", claims.ID),
	)

	return nil
}

// ValidateToken verifies a bearer token's signature and expiry, then rejects
// revoked tokens. Returns the authenticated user ID.
func (s *UserService) ValidateToken(ctx context.Context, rawToken string) (uuid.UUID, error) {
	claims, err := s.jwt.ValidateToken(rawToken)
	if err != nil {
		return uuid.Nil, apperrors.Unauthorized("invalid or expired token")
	}

	if claims.ID != "" {
		revoked, err := s.tokens.IsRevoked(ctx, claims.ID)
		if err != nil {
			return uuid.Nil, fmt.Errorf("check token revocation: %w", err)
		}
		if revoked {
			return uuid.Nil, apperrors.Unauthorized("token has been revoked")
		}
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, apperrors.Unauthorized("invalid token subject")
	}

	return userID, nil
}

// TokenExpiry exposes the configured token lifetime for login responses.
func (s *UserService) TokenExpiry() time.Duration {
	return s.jwt.Expiry()
}
