package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/lostlibrary/internal/crypto"
	"github.com/iudanet/lostlibrary/internal/models"
	"github.com/iudanet/lostlibrary/internal/server/jwt"
	"github.com/iudanet/lostlibrary/internal/server/storage"
	"github.com/iudanet/lostlibrary/internal/validation"
	"github.com/iudanet/lostlibrary/pkg/api"
)

// AuthHandler обрабатывает запросы авторизации
type AuthHandler struct {
	responder
	userStorage  storage.UserStorage
	tokenStorage storage.TokenStorage
	tokens       *jwt.Service
	now          func() time.Time
}

// NewAuthHandler создает новый handler для авторизации
func NewAuthHandler(logger *slog.Logger, userStorage storage.UserStorage, tokenStorage storage.TokenStorage, tokens *jwt.Service) *AuthHandler {
	return &AuthHandler{
		responder:    responder{logger: defaultLogger(logger).With(slog.String("component", "auth_handler"))},
		userStorage:  userStorage,
		tokenStorage: tokenStorage,
		tokens:       tokens,
		now:          time.Now,
	}
}

// SignUp обрабатывает POST /api/v1/auth/signup
// Регистрация нового пользователя
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.SignUpRequest
	if err := h.decode(w, r, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode signup request", slog.Any("error", err))
		h.sendError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	email := validation.NormalizeEmail(req.Email)
	if err := validation.ValidateEmail(email); err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidateNewPassword(req.Password); err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to hash password", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    h.now(),
	}

	if err := h.userStorage.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			h.logger.WarnContext(ctx, "user already exists")
			h.sendError(w, "email already registered", http.StatusConflict)
			return
		}
		h.logger.ErrorContext(ctx, "failed to create user", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "user registered successfully", slog.String("user_id", user.ID))

	h.sendJSON(w, api.SignUpResponse{
		UserID:  user.ID,
		Message: "User registered successfully",
	}, http.StatusCreated)
}

// Token обрабатывает POST /api/v1/auth/token
// Вход по email и паролю
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.PasswordGrantRequest
	if err := h.decode(w, r, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode token request", slog.Any("error", err))
		h.sendError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	email := validation.NormalizeEmail(req.Email)
	if err := validation.ValidateCredentials(email, req.Password); err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.userStorage.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			h.logger.WarnContext(ctx, "login failed: user not found")
			h.sendError(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if err := crypto.VerifyPassword(req.Password, user.PasswordHash); err != nil {
		if !errors.Is(err, crypto.ErrPasswordMismatch) {
			h.logger.ErrorContext(ctx, "failed to verify password", slog.Any("error", err))
		}
		h.logger.WarnContext(ctx, "login failed: invalid password", slog.String("user_id", user.ID))
		h.sendError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	resp, refresh, err := h.issue(user)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to issue tokens", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if err := h.tokenStorage.SaveRefreshToken(ctx, refresh); err != nil {
		h.logger.ErrorContext(ctx, "failed to save refresh token", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if err := h.userStorage.UpdateLastLogin(ctx, user.ID, h.now()); err != nil {
		// Не критичная ошибка, логируем но не прерываем
		h.logger.WarnContext(ctx, "failed to update last login", slog.Any("error", err))
	}

	h.logger.InfoContext(ctx, "user signed in", slog.String("user_id", user.ID))

	h.sendJSON(w, resp, http.StatusOK)
}

// Refresh обрабатывает POST /api/v1/auth/refresh
// Обмен refresh token на новую пару токенов. Старый refresh token сгорает.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	refreshToken, ok := BearerToken(r)
	if !ok {
		h.sendError(w, "refresh token is required", http.StatusUnauthorized)
		return
	}
	oldHash := crypto.HashToken(refreshToken)

	stored, err := h.tokenStorage.GetRefreshToken(ctx, oldHash)
	if err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			h.logger.WarnContext(ctx, "refresh token not found")
			h.sendError(w, "invalid refresh token", http.StatusUnauthorized)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get refresh token", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if stored.Expired(h.now()) {
		h.logger.WarnContext(ctx, "refresh token expired", slog.String("user_id", stored.UserID))
		if err := h.tokenStorage.DeleteRefreshToken(ctx, oldHash); err != nil && !errors.Is(err, storage.ErrTokenNotFound) {
			h.logger.WarnContext(ctx, "failed to delete expired refresh token", slog.Any("error", err))
		}
		h.sendError(w, "refresh token expired", http.StatusUnauthorized)
		return
	}

	user, err := h.userStorage.GetUserByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			h.sendError(w, "invalid refresh token", http.StatusUnauthorized)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	resp, next, err := h.issue(user)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to issue tokens", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if err := h.tokenStorage.RotateRefreshToken(ctx, oldHash, next); err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			// Параллельный запрос уже использовал этот токен
			h.logger.WarnContext(ctx, "refresh token already rotated", slog.String("user_id", user.ID))
			h.sendError(w, "invalid refresh token", http.StatusUnauthorized)
			return
		}
		h.logger.ErrorContext(ctx, "failed to rotate refresh token", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "tokens refreshed successfully", slog.String("user_id", user.ID))

	h.sendJSON(w, resp, http.StatusOK)
}

// Logout обрабатывает POST /api/v1/auth/logout
// Отзывает только ту сессию, чей refresh token передан в теле запроса.
// Требует AuthMiddleware.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		h.sendError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req api.LogoutRequest
	if err := h.decode(w, r, &req); err != nil {
		h.sendError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Scope == api.LogoutScopeGlobal {
		n, err := h.tokenStorage.DeleteUserTokens(ctx, userID)
		if err != nil {
			h.logger.ErrorContext(ctx, "failed to delete user tokens", slog.Any("error", err))
			h.sendError(w, "internal server error", http.StatusInternalServerError)
			return
		}
		h.logger.InfoContext(ctx, "user signed out everywhere",
			slog.String("user_id", userID), slog.Int("sessions", n))
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if req.RefreshToken == "" {
		h.sendError(w, "refresh_token is required", http.StatusBadRequest)
		return
	}

	hash := crypto.HashToken(req.RefreshToken)
	stored, err := h.tokenStorage.GetRefreshToken(ctx, hash)
	switch {
	case errors.Is(err, storage.ErrTokenNotFound):
		// Сессия уже отозвана
	case err != nil:
		h.logger.ErrorContext(ctx, "failed to get refresh token", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	case stored.UserID != userID:
		h.logger.WarnContext(ctx, "refresh token belongs to another user", slog.String("user_id", userID))
		h.sendError(w, "forbidden", http.StatusForbidden)
		return
	default:
		if err := h.tokenStorage.DeleteRefreshToken(ctx, hash); err != nil && !errors.Is(err, storage.ErrTokenNotFound) {
			h.logger.ErrorContext(ctx, "failed to delete refresh token", slog.Any("error", err))
			h.sendError(w, "internal server error", http.StatusInternalServerError)
			return
		}
	}

	h.logger.InfoContext(ctx, "user signed out", slog.String("user_id", userID))

	w.WriteHeader(http.StatusNoContent)
}

// User обрабатывает GET /api/v1/auth/user
// Возвращает идентичность владельца access token. Требует AuthMiddleware.
func (h *AuthHandler) User(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		h.sendError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.userStorage.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			h.sendError(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.sendJSON(w, api.User{ID: user.ID, Email: user.Email}, http.StatusOK)
}

// issue выпускает пару токенов для пользователя
func (h *AuthHandler) issue(user *models.User) (*api.SessionResponse, *models.RefreshToken, error) {
	accessToken, expiresAt, err := h.tokens.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, nil, err
	}

	refreshToken, refreshExpiresAt, err := h.tokens.GenerateRefreshToken()
	if err != nil {
		return nil, nil, err
	}

	now := h.now()
	resp := &api.SessionResponse{
		User:         api.User{ID: user.ID, Email: user.Email},
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(expiresAt.Sub(now).Seconds()),
		ExpiresAt:    expiresAt.Unix(),
	}

	stored := &models.RefreshToken{
		TokenHash: crypto.HashToken(refreshToken),
		UserID:    user.ID,
		ExpiresAt: refreshExpiresAt,
		CreatedAt: now,
	}

	return resp, stored, nil
}
