// Package favorites keeps the per-user list of favorite article ids on this device.
// Favorites are not synced with the backend.
package favorites

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/iudanet/lostlibrary/internal/client/storage"
)

const (
	keyPrefix = "favorites_"

	// SchemaVersion is the current layout of a persisted favorites list
	SchemaVersion = 1
)

// ErrSchemaMismatch is returned by load for records of an unknown layout
var ErrSchemaMismatch = errors.New("unsupported favorites record version")

type record struct {
	ArticleIDs []string `json:"article_ids"`
	Version    int      `json:"version"`
}

// Key returns the local storage key of the user's favorites
func Key(userID string) string {
	return keyPrefix + userID
}

// Store is the Favorites Store. Like the account store it never fails:
// storage faults read as an empty list and drop writes.
type Store struct {
	kv     storage.KV
	logger *slog.Logger
	mu     sync.Mutex
}

// NewStore creates a favorites store on top of local storage
func NewStore(kv storage.KV, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		kv:     kv,
		logger: logger.With(slog.String("component", "favorites")),
	}
}

// Get returns the user's favorite article ids in the order they were added
func (s *Store) Get(ctx context.Context, userID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.load(ctx, userID)
	if err != nil {
		s.logger.WarnContext(ctx, "favorites unavailable", slog.String("user_id", userID), slog.Any("error", err))
		return []string{}
	}
	return ids
}

// Contains reports whether the article is among the user's favorites
func (s *Store) Contains(ctx context.Context, userID, articleID string) bool {
	return slices.Contains(s.Get(ctx, userID), articleID)
}

// Add appends articleID unless it is already a favorite
func (s *Store) Add(ctx context.Context, userID, articleID string) {
	if userID == "" || articleID == "" {
		return
	}

	s.update(ctx, userID, "add", func(ids []string) ([]string, bool) {
		if slices.Contains(ids, articleID) {
			return ids, false
		}
		return append(ids, articleID), true
	})
}

// Remove deletes every occurrence of articleID
func (s *Store) Remove(ctx context.Context, userID, articleID string) {
	s.update(ctx, userID, "remove", func(ids []string) ([]string, bool) {
		kept := slices.DeleteFunc(slices.Clone(ids), func(id string) bool { return id == articleID })
		return kept, len(kept) != len(ids)
	})
}

func (s *Store) update(ctx context.Context, userID, op string, fn func([]string) ([]string, bool)) {
	if userID == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.load(ctx, userID)
	if err != nil {
		s.logger.WarnContext(ctx, "favorites write dropped",
			slog.String("op", op), slog.String("user_id", userID), slog.Any("error", err))
		return
	}

	ids, changed := fn(ids)
	if !changed {
		return
	}

	data, err := json.Marshal(record{Version: SchemaVersion, ArticleIDs: ids})
	if err != nil {
		s.logger.WarnContext(ctx, "favorites write dropped", slog.String("op", op), slog.Any("error", err))
		return
	}
	if err := s.kv.Set(ctx, Key(userID), data); err != nil {
		s.logger.WarnContext(ctx, "favorites write dropped",
			slog.String("op", op), slog.String("user_id", userID), slog.Any("error", err))
	}
}

// load reads the persisted list; a legacy bare array of ids is accepted
func (s *Store) load(ctx context.Context, userID string) ([]string, error) {
	data, ok, err := s.kv.Get(ctx, Key(userID))
	if err != nil {
		return nil, fmt.Errorf("failed to read favorites: %w", err)
	}
	data = bytes.TrimSpace(data)
	if !ok || len(data) == 0 {
		return []string{}, nil
	}

	var ids []string
	if data[0] == '[' {
		if err := json.Unmarshal(data, &ids); err != nil {
			return nil, fmt.Errorf("failed to unmarshal legacy favorites: %w", err)
		}
	} else {
		var rec record
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal favorites: %w", err)
		}
		if rec.Version != SchemaVersion {
			return nil, fmt.Errorf("%w: %d", ErrSchemaMismatch, rec.Version)
		}
		ids = rec.ArticleIDs
	}

	// пустые и повторяющиеся id отбрасываем
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" && !slices.Contains(result, id) {
			result = append(result, id)
		}
	}
	return result, nil
}
