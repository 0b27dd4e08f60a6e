package auth

import (
	"context"

	"github.com/iudanet/lostlibrary/internal/client/accounts"
	"github.com/iudanet/lostlibrary/pkg/api"
)

//go:generate moq -out backend_mock.go . Backend ProfileLookup

// Backend is the part of the backend auth API the client relies on
type Backend interface {
	// SignUp создает аккаунт; сессию не выдает
	SignUp(ctx context.Context, email, password string) (*api.SignUpResponse, error)

	// SignInWithPassword выполняет вход и возвращает новую сессию
	SignInWithPassword(ctx context.Context, email, password string) (*api.SessionResponse, error)

	// ExchangeRefreshToken обменивает refresh token на новую сессию.
	// Отозванный или просроченный токен дает ошибку, совместимую с api.ErrUnauthorized.
	ExchangeRefreshToken(ctx context.Context, refreshToken string) (*api.SessionResponse, error)

	// SignOut отзывает на сервере сессию с данным refresh token
	SignOut(ctx context.Context, accessToken, refreshToken string) error
}

// ProfileLookup returns the display fields of a user
type ProfileLookup interface {
	GetProfile(ctx context.Context, userID string) (*api.Profile, error)
}

// AccountStore is the subset of the local account store used for capture and restore
type AccountStore interface {
	Get(ctx context.Context, id string) (accounts.StoredAccount, bool)
	Upsert(ctx context.Context, acc accounts.StoredAccount)
	ClearSession(ctx context.Context, id string)
}
