package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/lostlibrary/internal/server/storage"
)

// Like records that userID likes the article. Repeated likes are no-ops.
func (s *Storage) Like(ctx context.Context, articleID, userID string) (int64, error) {
	return s.changeLike(ctx, articleID, func(tx *sql.Tx) (int64, error) {
		result, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO likes (article_id, user_id, created_at) VALUES (?, ?, ?)`,
			articleID, userID, unix(time.Now()),
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert like: %w", err)
		}
		return result.RowsAffected()
	}, `UPDATE articles SET like_count = like_count + 1 WHERE id = ?`)
}

// Unlike removes the like of userID. Missing likes are no-ops.
func (s *Storage) Unlike(ctx context.Context, articleID, userID string) (int64, error) {
	return s.changeLike(ctx, articleID, func(tx *sql.Tx) (int64, error) {
		result, err := tx.ExecContext(ctx,
			`DELETE FROM likes WHERE article_id = ? AND user_id = ?`,
			articleID, userID,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to delete like: %w", err)
		}
		return result.RowsAffected()
	}, `UPDATE articles SET like_count = MAX(like_count - 1, 0) WHERE id = ?`)
}

// changeLike применяет mutate и, если строка в likes изменилась, обновляет счетчик
func (s *Storage) changeLike(
	ctx context.Context,
	articleID string,
	mutate func(tx *sql.Tx) (int64, error),
	counterQuery string,
) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := publishedLikeCount(ctx, tx, articleID); err != nil {
		return 0, err
	}

	changed, err := mutate(tx)
	if err != nil {
		return 0, err
	}

	if changed > 0 {
		if _, err := tx.ExecContext(ctx, counterQuery, articleID); err != nil {
			return 0, fmt.Errorf("failed to update like count: %w", err)
		}
	}

	count, err := publishedLikeCount(ctx, tx, articleID)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return count, nil
}

// LikeStatus reports whether userID likes the article and the total count
func (s *Storage) LikeStatus(ctx context.Context, articleID, userID string) (bool, int64, error) {
	count, err := publishedLikeCount(ctx, s.db, articleID)
	if err != nil {
		return false, 0, err
	}

	if userID == "" {
		return false, count, nil
	}

	var exists int
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM likes WHERE article_id = ? AND user_id = ?`,
		articleID, userID,
	).Scan(&exists)
	if err != nil {
		return false, 0, fmt.Errorf("failed to get like: %w", err)
	}

	return exists > 0, count, nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func publishedLikeCount(ctx context.Context, db queryRower, articleID string) (int64, error) {
	var count int64
	err := db.QueryRowContext(ctx,
		`SELECT like_count FROM articles WHERE id = ? AND published_at IS NOT NULL`,
		articleID,
	).Scan(&count)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, storage.ErrArticleNotFound
		}
		return 0, fmt.Errorf("failed to get like count: %w", err)
	}
	return count, nil
}
