package middleware

import (
	"log/slog"
	"net/http"

	"github.com/iudanet/lostlibrary/internal/server/handlers"
	"github.com/iudanet/lostlibrary/internal/server/jwt"
)

// AuthMiddleware создает middleware для проверки JWT access token.
// Запросы без валидного токена получают 401.
func AuthMiddleware(logger *slog.Logger, tokens *jwt.Service) func(http.Handler) http.Handler {
	return authenticate(logger, tokens, true)
}

// OptionalAuthMiddleware пропускает анонимные запросы, но отклоняет невалидный токен,
// чтобы клиент мог обновить сессию.
func OptionalAuthMiddleware(logger *slog.Logger, tokens *jwt.Service) func(http.Handler) http.Handler {
	return authenticate(logger, tokens, false)
}

func authenticate(logger *slog.Logger, tokens *jwt.Service, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" && !required {
				next.ServeHTTP(w, r)
				return
			}

			// Ожидаем формат: "Bearer <token>"
			tokenString, ok := handlers.BearerToken(r)
			if !ok {
				logger.WarnContext(r.Context(), "missing or malformed Authorization header")
				writeError(w, "unauthorized: missing token", http.StatusUnauthorized)
				return
			}

			claims, err := tokens.ValidateAccessToken(tokenString)
			if err != nil {
				logger.WarnContext(r.Context(), "invalid access token", slog.Any("error", err))
				writeError(w, "unauthorized: invalid token", http.StatusUnauthorized)
				return
			}

			ctx := handlers.WithIdentity(r.Context(), claims.UserID(), claims.Email)

			logger.DebugContext(ctx, "user authenticated", slog.String("user_id", claims.UserID()))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
