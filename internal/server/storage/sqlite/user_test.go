package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/lostlibrary/internal/models"
	"github.com/iudanet/lostlibrary/internal/server/storage"
)

func TestUserStorage_CreateUser(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	tests := []struct {
		user *models.User
		name string
	}{
		{
			name: "create new user successfully",
			user: &models.User{
				ID:           uuid.New().String(),
				Email:        "ada@example.com",
				PasswordHash: "hash123",
				CreatedAt:    time.Now(),
			},
		},
		{
			name: "create user with last login",
			user: &models.User{
				ID:           uuid.New().String(),
				Email:        "grace@example.com",
				PasswordHash: "hash456",
				CreatedAt:    time.Now(),
				LastLoginAt:  timePtr(time.Now()),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, s.CreateUser(ctx, tt.user))

			retrieved, err := s.GetUserByID(ctx, tt.user.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.user.ID, retrieved.ID)
			assert.Equal(t, tt.user.Email, retrieved.Email)
			assert.Equal(t, tt.user.PasswordHash, retrieved.PasswordHash)
			assert.WithinDuration(t, tt.user.CreatedAt, retrieved.CreatedAt, time.Second)
			assert.Equal(t, tt.user.LastLoginAt != nil, retrieved.LastLoginAt != nil)

			// Профиль создается вместе с пользователем
			profile, err := s.GetProfile(ctx, tt.user.ID)
			require.NoError(t, err)
			assert.Empty(t, profile.Username)
		})
	}
}

func TestUserStorage_CreateUser_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	first := &models.User{ID: uuid.New().String(), Email: "dup@example.com", PasswordHash: "h", CreatedAt: time.Now()}
	require.NoError(t, s.CreateUser(ctx, first))

	second := &models.User{ID: uuid.New().String(), Email: "dup@example.com", PasswordHash: "h", CreatedAt: time.Now()}
	err := s.CreateUser(ctx, second)
	assert.ErrorIs(t, err, storage.ErrUserAlreadyExists)

	// Транзакция откатилась, профиль второго пользователя не создан
	_, err = s.GetProfile(ctx, second.ID)
	assert.ErrorIs(t, err, storage.ErrProfileNotFound)
}

func TestUserStorage_GetUser(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	user := &models.User{ID: uuid.New().String(), Email: "find@example.com", PasswordHash: "h", CreatedAt: time.Now()}
	require.NoError(t, s.CreateUser(ctx, user))

	tests := []struct {
		wantError error
		get       func() (*models.User, error)
		name      string
	}{
		{
			name: "by email",
			get:  func() (*models.User, error) { return s.GetUserByEmail(ctx, "find@example.com") },
		},
		{
			name: "by id",
			get:  func() (*models.User, error) { return s.GetUserByID(ctx, user.ID) },
		},
		{
			name:      "unknown email",
			get:       func() (*models.User, error) { return s.GetUserByEmail(ctx, "nobody@example.com") },
			wantError: storage.ErrUserNotFound,
		},
		{
			name:      "unknown id",
			get:       func() (*models.User, error) { return s.GetUserByID(ctx, uuid.New().String()) },
			wantError: storage.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.get()
			if tt.wantError != nil {
				assert.ErrorIs(t, err, tt.wantError)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, user.ID, got.ID)
		})
	}
}

func TestUserStorage_UpdateLastLogin(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	userID := createTestUser(t, ctx, s)
	loginTime := time.Now().Add(-time.Hour)

	require.NoError(t, s.UpdateLastLogin(ctx, userID, loginTime))

	retrieved, err := s.GetUserByID(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, retrieved.LastLoginAt)
	assert.WithinDuration(t, loginTime, *retrieved.LastLoginAt, time.Second)

	err = s.UpdateLastLogin(ctx, uuid.New().String(), loginTime)
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
}
