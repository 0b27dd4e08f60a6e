package storage

import (
	"context"

	"github.com/iudanet/lostlibrary/internal/models"
)

//go:generate moq -out content_mock.go . ProfileStorage ArticleStorage LikeStorage

// ProfileStorage persists public user profiles
type ProfileStorage interface {
	// GetProfile returns ErrProfileNotFound if the user has no profile
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)

	// UpsertProfile creates or replaces the profile of profile.UserID
	// Returns ErrUsernameTaken if the username belongs to another user
	UpsertProfile(ctx context.Context, profile *models.Profile) error
}

// ArticleStorage persists articles. Read methods only see published articles.
type ArticleStorage interface {
	// CreateArticle returns ErrSlugTaken on a duplicate slug
	CreateArticle(ctx context.Context, article *models.Article) error

	// GetPublishedArticle looks an article up by slug
	// Returns ErrArticleNotFound for unknown or unpublished articles
	GetPublishedArticle(ctx context.Context, slug string) (*models.Article, error)

	// ListPublishedArticles returns published articles, newest first
	ListPublishedArticles(ctx context.Context, filter models.ArticleFilter) ([]*models.Article, error)

	// IncrementViewCount adds one view to a published article
	IncrementViewCount(ctx context.Context, articleID string) error
}

// LikeStorage persists likes; a user likes an article at most once
type LikeStorage interface {
	// Like is idempotent and returns the new like count
	// Returns ErrArticleNotFound for unknown or unpublished articles
	Like(ctx context.Context, articleID, userID string) (int64, error)

	// Unlike is idempotent and returns the new like count, never below zero
	Unlike(ctx context.Context, articleID, userID string) (int64, error)

	// LikeStatus reports whether userID likes the article and the total count.
	// Empty userID means an anonymous reader.
	LikeStatus(ctx context.Context, articleID, userID string) (liked bool, count int64, err error)
}
