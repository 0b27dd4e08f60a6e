package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/lostlibrary/internal/models"
	"github.com/iudanet/lostlibrary/internal/server/storage"
)

// GetProfile retrieves the profile of a user
func (s *Storage) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	query := `
		SELECT user_id, COALESCE(username, ''), full_name, avatar_url, bio, website, updated_at
		FROM profiles
		WHERE user_id = ?
	`

	profile := &models.Profile{}
	var updatedAt int64

	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&profile.UserID,
		&profile.Username,
		&profile.FullName,
		&profile.AvatarURL,
		&profile.Bio,
		&profile.Website,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	profile.UpdatedAt = fromUnix(updatedAt)

	return profile, nil
}

// UpsertProfile creates or replaces a profile.
// Пустой username хранится как NULL, чтобы не конфликтовать с другими пустыми.
func (s *Storage) UpsertProfile(ctx context.Context, profile *models.Profile) error {
	query := `
		INSERT INTO profiles (user_id, username, full_name, avatar_url, bio, website, updated_at)
		VALUES (?, NULLIF(?, ''), ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			username = excluded.username,
			full_name = excluded.full_name,
			avatar_url = excluded.avatar_url,
			bio = excluded.bio,
			website = excluded.website,
			updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		profile.UserID,
		profile.Username,
		profile.FullName,
		profile.AvatarURL,
		profile.Bio,
		profile.Website,
		unix(profile.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err, "profiles.username") {
			return storage.ErrUsernameTaken
		}
		return fmt.Errorf("failed to upsert profile: %w", err)
	}

	return nil
}
