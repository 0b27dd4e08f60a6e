package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iudanet/lostlibrary/internal/client/identity"
	"github.com/iudanet/lostlibrary/pkg/api"
)

// refreshLeeway: access token считается истекшим чуть раньше срока,
// чтобы запрос не умер в полете
const refreshLeeway = 30 * time.Second

// Session is the backend session the client is currently authorized with
type Session struct {
	UserID       string `json:"user_id"`
	Email        string `json:"email"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"` // unix-время истечения access token, 0 если неизвестно
}

// Expired reports whether the access token has to be refreshed before use
func (s *Session) Expired(now time.Time) bool {
	if s.ExpiresAt == 0 {
		return false
	}
	return !now.Add(refreshLeeway).Before(time.Unix(s.ExpiresAt, 0))
}

// Identity returns who the session belongs to
func (s *Session) Identity() identity.Identity {
	if s == nil {
		return identity.Identity{}
	}
	return identity.Identity{UserID: s.UserID, Email: s.Email}
}

// newSession converts a backend response. When the backend omitted the expiry
// it is derived from expires_in or from the exp claim of the access token.
func newSession(resp *api.SessionResponse, now time.Time) *Session {
	sess := &Session{
		UserID:       resp.User.ID,
		Email:        resp.User.Email,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    resp.ExpiresAt,
	}

	switch {
	case sess.ExpiresAt != 0:
	case resp.ExpiresIn > 0:
		sess.ExpiresAt = now.Add(time.Duration(resp.ExpiresIn) * time.Second).Unix()
	default:
		sess.ExpiresAt = tokenExpiry(resp.AccessToken)
	}

	return sess
}

// tokenExpiry reads the exp claim without verifying the signature.
// The client never holds the signing key; the value is only a refresh hint.
func tokenExpiry(accessToken string) int64 {
	if accessToken == "" {
		return 0
	}

	token, _, err := jwt.NewParser().ParseUnverified(accessToken, jwt.MapClaims{})
	if err != nil {
		return 0
	}

	exp, err := token.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return 0
	}
	return exp.Unix()
}
