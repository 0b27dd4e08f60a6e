package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/iudanet/lostlibrary/internal/models"
	"github.com/iudanet/lostlibrary/internal/server/storage"
	"github.com/iudanet/lostlibrary/internal/validation"
	"github.com/iudanet/lostlibrary/pkg/api"
)

// ProfileHandler обрабатывает запросы к профилям
type ProfileHandler struct {
	responder
	profiles storage.ProfileStorage
	now      func() time.Time
}

// NewProfileHandler создает новый handler для профилей
func NewProfileHandler(logger *slog.Logger, profiles storage.ProfileStorage) *ProfileHandler {
	return &ProfileHandler{
		responder: responder{logger: defaultLogger(logger).With(slog.String("component", "profile_handler"))},
		profiles:  profiles,
		now:       time.Now,
	}
}

// Get обрабатывает GET /api/v1/profiles/{id}
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := r.PathValue("id")
	if userID == "" {
		h.sendError(w, "id is required", http.StatusBadRequest)
		return
	}

	profile, err := h.profiles.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrProfileNotFound) {
			h.sendError(w, "profile not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get profile", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.sendJSON(w, toAPIProfile(profile), http.StatusOK)
}

// UpdateMe обрабатывает PUT /api/v1/profiles/me
// Требует AuthMiddleware.
func (h *ProfileHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		h.sendError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req api.UpdateProfileRequest
	if err := h.decode(w, r, &req); err != nil {
		h.sendError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := validation.ValidateProfile(req); err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	profile := &models.Profile{
		UserID:    userID,
		Username:  req.Username,
		FullName:  req.FullName,
		AvatarURL: req.AvatarURL,
		Bio:       req.Bio,
		Website:   req.Website,
		UpdatedAt: h.now(),
	}

	if err := h.profiles.UpsertProfile(ctx, profile); err != nil {
		if errors.Is(err, storage.ErrUsernameTaken) {
			h.sendError(w, "username already taken", http.StatusConflict)
			return
		}
		h.logger.ErrorContext(ctx, "failed to update profile", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "profile updated", slog.String("user_id", userID))

	h.sendJSON(w, toAPIProfile(profile), http.StatusOK)
}

func toAPIProfile(p *models.Profile) api.Profile {
	return api.Profile{
		ID:        p.UserID,
		Username:  p.Username,
		FullName:  p.FullName,
		AvatarURL: p.AvatarURL,
		Bio:       p.Bio,
		Website:   p.Website,
	}
}
