package storage

import (
	"context"

	"github.com/iudanet/lostlibrary/internal/models"
)

//go:generate moq -out token_mock.go . TokenStorage

// TokenStorage defines interface for refresh token persistence.
// Tokens are addressed by their hash; the raw value never reaches storage.
type TokenStorage interface {
	// SaveRefreshToken stores a new refresh token
	SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error

	// GetRefreshToken retrieves refresh token by hash
	// Returns ErrTokenNotFound if token doesn't exist
	GetRefreshToken(ctx context.Context, tokenHash string) (*models.RefreshToken, error)

	// RotateRefreshToken atomically deletes oldHash and stores next.
	// Returns ErrTokenNotFound if oldHash was already used or revoked.
	RotateRefreshToken(ctx context.Context, oldHash string, next *models.RefreshToken) error

	// DeleteRefreshToken deletes refresh token by hash
	// Returns ErrTokenNotFound if token doesn't exist
	DeleteRefreshToken(ctx context.Context, tokenHash string) error

	// DeleteUserTokens deletes all refresh tokens for a user
	// Returns number of deleted tokens
	DeleteUserTokens(ctx context.Context, userID string) (int, error)

	// DeleteExpiredTokens removes all expired tokens
	// Returns number of deleted tokens
	DeleteExpiredTokens(ctx context.Context) (int, error)
}
