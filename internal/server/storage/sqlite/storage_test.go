package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/lostlibrary/internal/models"
)

func setupTestStorage(t *testing.T) (*Storage, func()) {
	t.Helper()

	s, err := New(context.Background(), ":memory:")
	require.NoError(t, err)

	return s, func() {
		_ = s.Close()
	}
}

func createTestUser(t *testing.T, ctx context.Context, s *Storage) string {
	t.Helper()

	user := &models.User{
		ID:           uuid.New().String(),
		Email:        uuid.New().String() + "@example.com",
		PasswordHash: "hash",
		CreatedAt:    time.Now(),
	}
	require.NoError(t, s.CreateUser(ctx, user))

	return user.ID
}

func createTestArticle(t *testing.T, ctx context.Context, s *Storage, mutate func(a *models.Article)) *models.Article {
	t.Helper()

	userID := createTestUser(t, ctx, s)
	article := &models.Article{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       "The Library of Alexandria",
		Slug:        "library-" + uuid.New().String()[:8],
		Content:     "Scrolls and fire.",
		Category:    "ancient",
		CreatedAt:   time.Now(),
		PublishedAt: timePtr(time.Now()),
	}
	if mutate != nil {
		mutate(article)
	}
	require.NoError(t, s.CreateArticle(ctx, article))

	return article
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func TestNew_RunsMigrations(t *testing.T) {
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	for _, table := range []string{"users", "refresh_tokens", "profiles", "articles", "likes"} {
		var name string
		err := s.DB().QueryRow(
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
		).Scan(&name)
		require.NoError(t, err, table)
		assert.Equal(t, table, name)
	}
}
