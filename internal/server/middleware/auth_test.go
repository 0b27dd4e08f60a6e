package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/iudanet/lostlibrary/internal/server/handlers"
	"github.com/iudanet/lostlibrary/internal/server/jwt"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// identityHandler отвечает user_id из контекста или "anonymous"
func identityHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := handlers.GetUserID(r.Context())
		if !ok {
			userID = "anonymous"
		}
		_, _ = w.Write([]byte(userID))
	}
}

func TestAuthMiddleware(t *testing.T) {
	tokens := jwt.NewService(testSecret, 15*time.Minute, time.Hour)
	valid, _, err := tokens.GenerateAccessToken("user123", "user@example.com")
	assert.NoError(t, err)

	foreign, _, err := jwt.NewService("ffffffffffffffffffffffffffffffff", time.Minute, time.Hour).
		GenerateAccessToken("user123", "user@example.com")
	assert.NoError(t, err)

	tests := []struct {
		name         string
		header       string
		wantRequired int
		wantOptional int
		wantBody     string
	}{
		{name: "valid token", header: "Bearer " + valid, wantRequired: http.StatusOK, wantOptional: http.StatusOK, wantBody: "user123"},
		{name: "missing header", header: "", wantRequired: http.StatusUnauthorized, wantOptional: http.StatusOK, wantBody: "anonymous"},
		{name: "wrong scheme", header: "Basic " + valid, wantRequired: http.StatusUnauthorized, wantOptional: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer invalid", wantRequired: http.StatusUnauthorized, wantOptional: http.StatusUnauthorized},
		{name: "wrong secret", header: "Bearer " + foreign, wantRequired: http.StatusUnauthorized, wantOptional: http.StatusUnauthorized},
	}

	required := AuthMiddleware(setupTestLogger(), tokens)(identityHandler())
	optional := OptionalAuthMiddleware(setupTestLogger(), tokens)(identityHandler())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, variant := range []struct {
				handler http.Handler
				want    int
			}{{required, tt.wantRequired}, {optional, tt.wantOptional}} {
				req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/user", nil)
				if tt.header != "" {
					req.Header.Set("Authorization", tt.header)
				}
				w := httptest.NewRecorder()
				variant.handler.ServeHTTP(w, req)

				assert.Equal(t, variant.want, w.Code)
				if variant.want == http.StatusOK {
					assert.Equal(t, tt.wantBody, w.Body.String())
				} else {
					assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
				}
			}
		})
	}
}
