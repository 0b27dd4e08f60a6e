package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iudanet/lostlibrary/internal/models"
	"github.com/iudanet/lostlibrary/internal/server/storage"
)

// DefaultFeedLimit is used when the filter carries no limit
const DefaultFeedLimit = 20

const articleColumns = `
	id, user_id, title, slug, excerpt, content, category, image_url,
	view_count, like_count, created_at, published_at
`

// CreateArticle inserts a new article
func (s *Storage) CreateArticle(ctx context.Context, article *models.Article) error {
	query := `
		INSERT INTO articles (` + articleColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		article.ID,
		article.UserID,
		article.Title,
		article.Slug,
		article.Excerpt,
		article.Content,
		article.Category,
		article.ImageURL,
		article.ViewCount,
		article.LikeCount,
		unix(article.CreatedAt),
		optionalUnix(article.PublishedAt),
	)
	if err != nil {
		if isUniqueViolation(err, "articles.slug") {
			return storage.ErrSlugTaken
		}
		return fmt.Errorf("failed to insert article: %w", err)
	}

	return nil
}

// GetPublishedArticle retrieves a published article by slug
func (s *Storage) GetPublishedArticle(ctx context.Context, slug string) (*models.Article, error) {
	query := `
		SELECT ` + articleColumns + `
		FROM articles
		WHERE slug = ? AND published_at IS NOT NULL
	`

	article, err := scanArticle(s.db.QueryRowContext(ctx, query, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrArticleNotFound
		}
		return nil, fmt.Errorf("failed to get article: %w", err)
	}

	return article, nil
}

// ListPublishedArticles returns published articles matching the filter, newest first
func (s *Storage) ListPublishedArticles(ctx context.Context, filter models.ArticleFilter) ([]*models.Article, error) {
	var (
		where = []string{"published_at IS NOT NULL"}
		args  []any
	)

	if filter.Category != "" {
		where = append(where, "category = ?")
		args = append(args, filter.Category)
	}

	if filter.IDs != nil {
		// Пустой список id означает пустой результат, а не всю ленту
		if len(filter.IDs) == 0 {
			return []*models.Article{}, nil
		}
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(filter.IDs)), ",")
		where = append(where, "id IN ("+placeholders+")")
		for _, id := range filter.IDs {
			args = append(args, id)
		}
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = max(DefaultFeedLimit, len(filter.IDs))
	}
	args = append(args, limit)

	query := `
		SELECT ` + articleColumns + `
		FROM articles
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY published_at DESC, id
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	articles := []*models.Article{}
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		articles = append(articles, article)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate articles: %w", err)
	}

	return articles, nil
}

// IncrementViewCount adds one view to a published article
func (s *Storage) IncrementViewCount(ctx context.Context, articleID string) error {
	query := `
		UPDATE articles SET view_count = view_count + 1
		WHERE id = ? AND published_at IS NOT NULL
	`

	result, err := s.db.ExecContext(ctx, query, articleID)
	if err != nil {
		return fmt.Errorf("failed to increment view count: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return storage.ErrArticleNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (*models.Article, error) {
	article := &models.Article{}
	var (
		createdAt   int64
		publishedAt sql.NullInt64
	)

	err := row.Scan(
		&article.ID,
		&article.UserID,
		&article.Title,
		&article.Slug,
		&article.Excerpt,
		&article.Content,
		&article.Category,
		&article.ImageURL,
		&article.ViewCount,
		&article.LikeCount,
		&createdAt,
		&publishedAt,
	)
	if err != nil {
		return nil, err
	}

	article.CreatedAt = fromUnix(createdAt)
	article.PublishedAt = nullableUnix(publishedAt)

	return article, nil
}
