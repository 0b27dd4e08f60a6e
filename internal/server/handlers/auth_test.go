package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/lostlibrary/internal/crypto"
	"github.com/iudanet/lostlibrary/internal/models"
	"github.com/iudanet/lostlibrary/internal/server/jwt"
	"github.com/iudanet/lostlibrary/internal/server/storage"
	"github.com/iudanet/lostlibrary/pkg/api"
)

// mockUserStorage is a mock implementation of UserStorage for failure paths
type mockUserStorage struct {
	getUserError error
}

func (m *mockUserStorage) CreateUser(ctx context.Context, user *models.User) error {
	return nil
}

func (m *mockUserStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, m.getUserError
}

func (m *mockUserStorage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return nil, m.getUserError
}

func (m *mockUserStorage) UpdateLastLogin(ctx context.Context, userID string, loginTime time.Time) error {
	return nil
}

func TestAuthHandler_SignUp(t *testing.T) {
	env := newTestEnv(t)
	env.signUp(t, "taken@example.com", "correct horse")

	tests := []struct {
		body     any
		name     string
		wantCode int
	}{
		{
			name:     "successful signup",
			body:     api.SignUpRequest{Email: "  New@Example.com ", Password: "correct horse"},
			wantCode: http.StatusCreated,
		},
		{
			name:     "duplicate email ignores case",
			body:     api.SignUpRequest{Email: "TAKEN@example.com", Password: "correct horse"},
			wantCode: http.StatusConflict,
		},
		{
			name:     "invalid email",
			body:     api.SignUpRequest{Email: "not-an-email", Password: "correct horse"},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "short password",
			body:     api.SignUpRequest{Email: "short@example.com", Password: "short"},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "invalid body",
			body:     "not an object",
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			env.auth.SignUp(w, jsonRequest(http.MethodPost, "/api/v1/auth/signup", tt.body))
			assert.Equal(t, tt.wantCode, w.Code, w.Body.String())

			if tt.wantCode == http.StatusCreated {
				var resp api.SignUpResponse
				decodeBody(t, w, &resp)
				assert.NotEmpty(t, resp.UserID)

				user, err := env.store.GetUserByEmail(context.Background(), "new@example.com")
				require.NoError(t, err)
				assert.Equal(t, resp.UserID, user.ID)
				assert.NoError(t, crypto.VerifyPassword("correct horse", user.PasswordHash))
			}
		})
	}
}

func TestAuthHandler_Token(t *testing.T) {
	env := newTestEnv(t)
	env.signUp(t, "ada@example.com", "analytical engine")

	tests := []struct {
		name     string
		req      api.PasswordGrantRequest
		wantCode int
	}{
		{name: "valid credentials", req: api.PasswordGrantRequest{Email: "Ada@Example.com", Password: "analytical engine"}, wantCode: http.StatusOK},
		{name: "wrong password", req: api.PasswordGrantRequest{Email: "ada@example.com", Password: "difference engine"}, wantCode: http.StatusUnauthorized},
		{name: "unknown user", req: api.PasswordGrantRequest{Email: "nobody@example.com", Password: "whatever"}, wantCode: http.StatusUnauthorized},
		{name: "empty password", req: api.PasswordGrantRequest{Email: "ada@example.com"}, wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			env.auth.Token(w, jsonRequest(http.MethodPost, "/api/v1/auth/token", tt.req))
			require.Equal(t, tt.wantCode, w.Code, w.Body.String())

			if tt.wantCode != http.StatusOK {
				var resp api.ErrorResponse
				decodeBody(t, w, &resp)
				assert.NotEmpty(t, resp.Message)
				return
			}

			var session api.SessionResponse
			decodeBody(t, w, &session)
			assert.Equal(t, "ada@example.com", session.User.Email)
			assert.NotEmpty(t, session.RefreshToken)
			assert.Positive(t, session.ExpiresIn)
			assert.Greater(t, session.ExpiresAt, time.Now().Unix())

			claims, err := env.tokens.ValidateAccessToken(session.AccessToken)
			require.NoError(t, err)
			assert.Equal(t, session.User.ID, claims.UserID())

			// В хранилище лежит только хеш refresh token
			_, err = env.store.GetRefreshToken(context.Background(), crypto.HashToken(session.RefreshToken))
			assert.NoError(t, err)
			_, err = env.store.GetRefreshToken(context.Background(), session.RefreshToken)
			assert.ErrorIs(t, err, storage.ErrTokenNotFound)

			user, err := env.store.GetUserByID(context.Background(), session.User.ID)
			require.NoError(t, err)
			assert.NotNil(t, user.LastLoginAt)
		})
	}
}

func TestAuthHandler_Token_StorageError(t *testing.T) {
	handler := NewAuthHandler(setupTestLogger(), &mockUserStorage{getUserError: errors.New("db down")}, nil,
		jwt.NewService(testSecret, time.Minute, time.Hour))

	w := httptest.NewRecorder()
	handler.Token(w, jsonRequest(http.MethodPost, "/api/v1/auth/token",
		api.PasswordGrantRequest{Email: "ada@example.com", Password: "secret"}))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestAuthHandler_Refresh(t *testing.T) {
	env := newTestEnv(t)
	session := env.signUp(t, "grace@example.com", "compiler cobol")

	refresh := func(token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		env.auth.Refresh(w, req)
		return w
	}

	w := refresh(session.RefreshToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var rotated api.SessionResponse
	decodeBody(t, w, &rotated)
	assert.Equal(t, session.User, rotated.User)
	assert.NotEqual(t, session.RefreshToken, rotated.RefreshToken)

	// Старый токен больше не принимается
	assert.Equal(t, http.StatusUnauthorized, refresh(session.RefreshToken).Code)
	assert.Equal(t, http.StatusOK, refresh(rotated.RefreshToken).Code)

	assert.Equal(t, http.StatusUnauthorized, refresh("").Code)
	assert.Equal(t, http.StatusUnauthorized, refresh("unknown").Code)
}

func TestAuthHandler_Refresh_Expired(t *testing.T) {
	env := newTestEnv(t)
	session := env.signUp(t, "old@example.com", "password123")

	env.auth.now = func() time.Time { return time.Now().Add(48 * time.Hour) }

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
	req.Header.Set("Authorization", "Bearer "+session.RefreshToken)
	w := httptest.NewRecorder()
	env.auth.Refresh(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	_, err := env.store.GetRefreshToken(context.Background(), crypto.HashToken(session.RefreshToken))
	assert.ErrorIs(t, err, storage.ErrTokenNotFound)
}

func TestAuthHandler_Logout(t *testing.T) {
	env := newTestEnv(t)
	laptop := env.signUp(t, "multi@example.com", "password123")

	// Второй вход того же пользователя на другом устройстве
	w := httptest.NewRecorder()
	env.auth.Token(w, jsonRequest(http.MethodPost, "/api/v1/auth/token",
		api.PasswordGrantRequest{Email: "multi@example.com", Password: "password123"}))
	require.Equal(t, http.StatusOK, w.Code)
	var phone api.SessionResponse
	decodeBody(t, w, &phone)

	stranger := env.signUp(t, "stranger@example.com", "password123")

	logout := func(as api.SessionResponse, refresh string) int {
		w := httptest.NewRecorder()
		req := jsonRequest(http.MethodPost, "/api/v1/auth/logout", api.LogoutRequest{RefreshToken: refresh})
		env.auth.Logout(w, asUser(req, as))
		return w.Code
	}

	assert.Equal(t, http.StatusForbidden, logout(stranger, laptop.RefreshToken))
	assert.Equal(t, http.StatusNoContent, logout(laptop, laptop.RefreshToken))
	// Повторный выход не ошибка
	assert.Equal(t, http.StatusNoContent, logout(laptop, laptop.RefreshToken))
	assert.Equal(t, http.StatusBadRequest, logout(laptop, ""))

	ctx := context.Background()
	_, err := env.store.GetRefreshToken(ctx, crypto.HashToken(laptop.RefreshToken))
	assert.ErrorIs(t, err, storage.ErrTokenNotFound)
	_, err = env.store.GetRefreshToken(ctx, crypto.HashToken(phone.RefreshToken))
	assert.NoError(t, err, "other sessions must survive")

	w = httptest.NewRecorder()
	env.auth.Logout(w, jsonRequest(http.MethodPost, "/api/v1/auth/logout", api.LogoutRequest{RefreshToken: "x"}))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_LogoutGlobal(t *testing.T) {
	env := newTestEnv(t)
	laptop := env.signUp(t, "multi@example.com", "password123")

	w := httptest.NewRecorder()
	env.auth.Token(w, jsonRequest(http.MethodPost, "/api/v1/auth/token",
		api.PasswordGrantRequest{Email: "multi@example.com", Password: "password123"}))
	require.Equal(t, http.StatusOK, w.Code)
	var phone api.SessionResponse
	decodeBody(t, w, &phone)

	other := env.signUp(t, "other@example.com", "password123")

	w = httptest.NewRecorder()
	req := jsonRequest(http.MethodPost, "/api/v1/auth/logout", api.LogoutRequest{Scope: api.LogoutScopeGlobal})
	env.auth.Logout(w, asUser(req, laptop))
	assert.Equal(t, http.StatusNoContent, w.Code)

	ctx := context.Background()
	for _, refresh := range []string{laptop.RefreshToken, phone.RefreshToken} {
		_, err := env.store.GetRefreshToken(ctx, crypto.HashToken(refresh))
		assert.ErrorIs(t, err, storage.ErrTokenNotFound)
	}
	_, err := env.store.GetRefreshToken(ctx, crypto.HashToken(other.RefreshToken))
	assert.NoError(t, err, "other users keep their sessions")
}

func TestAuthHandler_User(t *testing.T) {
	env := newTestEnv(t)
	session := env.signUp(t, "me@example.com", "password123")

	w := httptest.NewRecorder()
	env.auth.User(w, asUser(httptest.NewRequest(http.MethodGet, "/api/v1/auth/user", nil), session))
	require.Equal(t, http.StatusOK, w.Code)

	var user api.User
	decodeBody(t, w, &user)
	assert.Equal(t, session.User, user)

	w = httptest.NewRecorder()
	env.auth.User(w, httptest.NewRequest(http.MethodGet, "/api/v1/auth/user", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
		wantOK bool
	}{
		{name: "bearer", header: "Bearer abc", want: "abc", wantOK: true},
		{name: "case insensitive scheme", header: "bearer abc", want: "abc", wantOK: true},
		{name: "missing", header: ""},
		{name: "basic", header: "Basic abc"},
		{name: "empty token", header: "Bearer "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			got, ok := BearerToken(req)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
