package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/lostlibrary/pkg/api"
)

// TestNewClient проверяет создание нового клиента
func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8080/", 0)

	assert.Equal(t, "http://localhost:8080", client.baseURL)
	assert.Equal(t, DefaultTimeout, client.httpClient.Timeout)

	client = NewClient("http://localhost:8080", 5*time.Second)
	assert.Equal(t, 5*time.Second, client.httpClient.Timeout)
}

// TestClient_SignInWithPassword проверяет успешный вход
func TestClient_SignInWithPassword(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/auth/token", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Empty(t, r.Header.Get("Authorization"))

		var req api.PasswordGrantRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "reader@example.com", req.Email)
		assert.Equal(t, "secret-password", req.Password)

		_ = json.NewEncoder(w).Encode(api.SessionResponse{
			User:         api.User{ID: "user-1", Email: "reader@example.com"},
			AccessToken:  "access",
			RefreshToken: "refresh",
			ExpiresIn:    900,
			ExpiresAt:    1700000900,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)

	resp, err := client.SignInWithPassword(context.Background(), "reader@example.com", "secret-password")

	require.NoError(t, err)
	assert.Equal(t, "user-1", resp.User.ID)
	assert.Equal(t, "access", resp.AccessToken)
	assert.Equal(t, "refresh", resp.RefreshToken)
	assert.Equal(t, int64(1700000900), resp.ExpiresAt)
}

// TestClient_ExchangeRefreshToken проверяет передачу refresh token в заголовке
func TestClient_ExchangeRefreshToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/refresh", r.URL.Path)
		assert.Equal(t, "Bearer old-refresh", r.Header.Get("Authorization"))

		_ = json.NewEncoder(w).Encode(api.SessionResponse{
			User:         api.User{ID: "user-1"},
			AccessToken:  "new-access",
			RefreshToken: "new-refresh",
		})
	}))
	defer server.Close()

	resp, err := NewClient(server.URL, time.Second).ExchangeRefreshToken(context.Background(), "old-refresh")

	require.NoError(t, err)
	assert.Equal(t, "new-refresh", resp.RefreshToken)
}

// TestClient_ErrorMapping проверяет сопоставление статусов с ошибками пакета
func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		target       error
		name         string
		body         string
		expectedText string
		statusCode   int
	}{
		{
			name:         "unauthorized",
			statusCode:   http.StatusUnauthorized,
			body:         `{"error":"Unauthorized","message":"invalid refresh token"}`,
			target:       ErrUnauthorized,
			expectedText: "server error (401): invalid refresh token",
		},
		{
			name:         "not found",
			statusCode:   http.StatusNotFound,
			body:         `{"error":"Not Found","message":"article not found"}`,
			target:       ErrNotFound,
			expectedText: "server error (404): article not found",
		},
		{
			name:         "internal error without json",
			statusCode:   http.StatusInternalServerError,
			body:         "Internal Server Error",
			target:       ErrBackendUnavailable,
			expectedText: "request failed with status 500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewClient(server.URL, time.Second).ExchangeRefreshToken(context.Background(), "token")

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)
			assert.Contains(t, err.Error(), tt.expectedText)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.statusCode, apiErr.StatusCode)
		})
	}
}

// TestClient_BadRequestIsNotSentinel проверяет, что 4xx не считается недоступностью
func TestClient_BadRequestIsNotSentinel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"Conflict","message":"email already registered"}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, time.Second).SignUp(context.Background(), "a@example.com", "password123")

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrBackendUnavailable)
	assert.NotErrorIs(t, err, ErrUnauthorized)
	assert.Contains(t, err.Error(), "email already registered")
}

// TestClient_Timeout проверяет, что таймаут превращается в ErrBackendUnavailable
func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	_, err := NewClient(server.URL, 50*time.Millisecond).ExchangeRefreshToken(context.Background(), "token")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBackendUnavailable)
}

// TestClient_ServerDown проверяет ошибку транспорта
func TestClient_ServerDown(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := NewClient(url, time.Second).GetProfile(context.Background(), "user-1")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBackendUnavailable)
}

// TestClient_CancelledContext проверяет, что отмена не выдается за недоступность сервера
func TestClient_CancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(server.URL, time.Second).ExchangeRefreshToken(ctx, "token")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrBackendUnavailable)
}

// TestClient_SignOut проверяет отзыв одной сессии
func TestClient_SignOut(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/logout", r.URL.Path)
		assert.Equal(t, "Bearer access", r.Header.Get("Authorization"))

		var req api.LogoutRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "refresh", req.RefreshToken)

		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	err := NewClient(server.URL, time.Second).SignOut(context.Background(), "access", "refresh")

	require.NoError(t, err)
}

func TestClient_SignOutEverywhere(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req api.LogoutRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, api.LogoutScopeGlobal, req.Scope)
		assert.Empty(t, req.RefreshToken)

		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	err := NewClient(server.URL, time.Second).SignOutEverywhere(context.Background(), "access")

	require.NoError(t, err)
}

// TestClient_GetArticlesByIDs проверяет пакетный запрос статей
func TestClient_GetArticlesByIDs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/articles", r.URL.Path)
		assert.Equal(t, "a1,a2", r.URL.Query().Get("ids"))

		_ = json.NewEncoder(w).Encode(api.ArticlesResponse{
			Articles: []api.Article{{ID: "a2", Title: "Second"}},
		})
	}))
	defer server.Close()

	articles, err := NewClient(server.URL, time.Second).GetArticlesByIDs(context.Background(), []string{"a1", "a2"})

	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "a2", articles[0].ID)
}

// TestClient_GetArticlesByIDs_Empty проверяет, что пустой список не идет в сеть
func TestClient_GetArticlesByIDs_Empty(t *testing.T) {
	client := NewClient("http://127.0.0.1:0", time.Second)

	articles, err := client.GetArticlesByIDs(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, articles)
}

// TestClient_Feed проверяет фильтр по категории
func TestClient_Feed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "world-wars", r.URL.Query().Get("category"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{"articles":null}`))
	}))
	defer server.Close()

	articles, err := NewClient(server.URL, time.Second).Feed(context.Background(), "world-wars", 5)

	require.NoError(t, err)
	assert.NotNil(t, articles)
	assert.Empty(t, articles)
}

// TestClient_Like проверяет методы лайков
func TestClient_Like(t *testing.T) {
	var methods []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method)
		assert.Equal(t, "/api/v1/articles/art-1/like", r.URL.Path)

		liked := r.Method == http.MethodPost
		_ = json.NewEncoder(w).Encode(api.LikeStatus{ArticleID: "art-1", Liked: liked, Count: 1})
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	ctx := context.Background()

	status, err := client.Like(ctx, "access", "art-1")
	require.NoError(t, err)
	assert.True(t, status.Liked)

	_, err = client.Unlike(ctx, "access", "art-1")
	require.NoError(t, err)

	_, err = client.LikeStatus(ctx, "", "art-1")
	require.NoError(t, err)

	assert.Equal(t, []string{http.MethodPost, http.MethodDelete, http.MethodGet}, methods)
}

func TestAPIError_UnwrapUnknownStatus(t *testing.T) {
	err := &APIError{StatusCode: http.StatusBadRequest, Message: "bad"}

	assert.Nil(t, errors.Unwrap(err))
	assert.Equal(t, "server error (400): bad", err.Error())
}
