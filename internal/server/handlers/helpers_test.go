package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iudanet/lostlibrary/internal/server/jwt"
	"github.com/iudanet/lostlibrary/internal/server/storage/sqlite"
	"github.com/iudanet/lostlibrary/pkg/api"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testEnv struct {
	store    *sqlite.Storage
	tokens   *jwt.Service
	auth     *AuthHandler
	profiles *ProfileHandler
	articles *ArticleHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	logger := setupTestLogger()
	tokens := jwt.NewService(testSecret, 15*time.Minute, 24*time.Hour)

	return &testEnv{
		store:    store,
		tokens:   tokens,
		auth:     NewAuthHandler(logger, store, store, tokens),
		profiles: NewProfileHandler(logger, store),
		articles: NewArticleHandler(logger, store, store, store),
	}
}

// signUp регистрирует пользователя и сразу выполняет вход
func (e *testEnv) signUp(t *testing.T, email, password string) api.SessionResponse {
	t.Helper()

	w := httptest.NewRecorder()
	e.auth.SignUp(w, jsonRequest(http.MethodPost, "/api/v1/auth/signup", api.SignUpRequest{Email: email, Password: password}))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = httptest.NewRecorder()
	e.auth.Token(w, jsonRequest(http.MethodPost, "/api/v1/auth/token", api.PasswordGrantRequest{Email: email, Password: password}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var session api.SessionResponse
	decodeBody(t, w, &session)
	return session
}

func jsonRequest(method, target string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func asUser(req *http.Request, session api.SessionResponse) *http.Request {
	return req.WithContext(WithIdentity(req.Context(), session.User.ID, session.User.Email))
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(w.Body).Decode(dst))
}
