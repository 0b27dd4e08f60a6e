package accounts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/iudanet/lostlibrary/internal/client/storage"
)

const (
	// StorageKey is the local storage key holding the account list
	StorageKey = "lostlibrary.accounts"

	// SchemaVersion is the current layout of the persisted record
	SchemaVersion = 1
)

// ErrSchemaMismatch is returned by load when the persisted record has a layout
// this build does not understand.
var ErrSchemaMismatch = errors.New("unsupported account record version")

// record is the versioned envelope written to local storage
type record struct {
	Accounts []StoredAccount `json:"accounts"`
	Version  int             `json:"version"`
}

// Store is the Local Account Store.
// None of its methods return errors: storage faults are logged and the store
// behaves as if it were empty.
type Store struct {
	kv     storage.KV
	logger *slog.Logger
	now    func() time.Time
	mu     sync.Mutex
}

// NewStore creates a Store on top of the given local storage
func NewStore(kv storage.KV, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		kv:     kv,
		logger: logger.With(slog.String("component", "accounts")),
		now:    time.Now,
	}
}

// List returns all stored accounts in first-insertion order
func (s *Store) List(ctx context.Context) []StoredAccount {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.load(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "account list unavailable", slog.Any("error", err))
		return []StoredAccount{}
	}
	return accounts
}

// Get returns the account with the given id
func (s *Store) Get(ctx context.Context, id string) (StoredAccount, bool) {
	for _, acc := range s.List(ctx) {
		if acc.ID == id {
			return acc, true
		}
	}
	return StoredAccount{}, false
}

// FindByEmail returns the first account whose email matches (case-insensitive).
// Email is a display key and is not assumed unique in the store.
func (s *Store) FindByEmail(ctx context.Context, email string) (StoredAccount, bool) {
	for _, acc := range s.List(ctx) {
		if strings.EqualFold(acc.Email, email) {
			return acc, true
		}
	}
	return StoredAccount{}, false
}

// Upsert appends acc when its id is unknown, otherwise merges the non-empty
// fields of acc into the stored record.
func (s *Store) Upsert(ctx context.Context, acc StoredAccount) {
	if acc.ID == "" {
		s.logger.WarnContext(ctx, "refusing to store account without id")
		return
	}

	s.update(ctx, "upsert", func(accounts []StoredAccount) ([]StoredAccount, bool) {
		for i := range accounts {
			if accounts[i].ID == acc.ID {
				merge(&accounts[i], acc)
				return accounts, true
			}
		}

		if acc.AddedAt.IsZero() {
			acc.AddedAt = s.now()
		}
		return append(accounts, acc), true
	})
}

// Remove deletes the account with the given id. Removing an unknown id is a no-op.
func (s *Store) Remove(ctx context.Context, id string) {
	s.update(ctx, "remove", func(accounts []StoredAccount) ([]StoredAccount, bool) {
		kept := accounts[:0]
		for _, acc := range accounts {
			if acc.ID != id {
				kept = append(kept, acc)
			}
		}
		return kept, len(kept) != len(accounts)
	})
}

// ClearSession forgets the stored tokens of an account, keeping its display data
func (s *Store) ClearSession(ctx context.Context, id string) {
	s.update(ctx, "clear session", func(accounts []StoredAccount) ([]StoredAccount, bool) {
		for i := range accounts {
			if accounts[i].ID == id {
				if !accounts[i].HasSession() && accounts[i].AccessToken == "" {
					return accounts, false
				}
				accounts[i].AccessToken = ""
				accounts[i].RefreshToken = ""
				accounts[i].ExpiresAt = 0
				accounts[i].CapturedAt = time.Time{}
				return accounts, true
			}
		}
		return accounts, false
	})
}

// Touch records that the account has just been used
func (s *Store) Touch(ctx context.Context, id string) {
	s.Upsert(ctx, StoredAccount{ID: id, LastUsedAt: s.now()})
}

// update runs a read-modify-write cycle; fn reports whether anything changed
func (s *Store) update(ctx context.Context, op string, fn func([]StoredAccount) ([]StoredAccount, bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.load(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "account write dropped", slog.String("op", op), slog.Any("error", err))
		return
	}

	accounts, changed := fn(accounts)
	if !changed {
		return
	}

	if err := s.save(ctx, accounts); err != nil {
		s.logger.WarnContext(ctx, "account write dropped", slog.String("op", op), slog.Any("error", err))
	}
}

// load reads and validates the persisted record.
// Legacy records (a bare JSON array) are migrated in memory.
func (s *Store) load(ctx context.Context) ([]StoredAccount, error) {
	data, ok, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read accounts: %w", err)
	}
	if !ok || len(bytes.TrimSpace(data)) == 0 {
		return []StoredAccount{}, nil
	}

	var accounts []StoredAccount

	if data = bytes.TrimSpace(data); data[0] == '[' {
		// Старый формат: массив без версии
		if err := json.Unmarshal(data, &accounts); err != nil {
			return nil, fmt.Errorf("failed to unmarshal legacy accounts: %w", err)
		}
	} else {
		var rec record
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal accounts: %w", err)
		}
		if rec.Version != SchemaVersion {
			return nil, fmt.Errorf("%w: %d", ErrSchemaMismatch, rec.Version)
		}
		accounts = rec.Accounts
	}

	return normalize(accounts), nil
}

func (s *Store) save(ctx context.Context, accounts []StoredAccount) error {
	data, err := json.Marshal(record{Version: SchemaVersion, Accounts: accounts})
	if err != nil {
		return fmt.Errorf("failed to marshal accounts: %w", err)
	}
	if err := s.kv.Set(ctx, StorageKey, data); err != nil {
		return fmt.Errorf("failed to save accounts: %w", err)
	}
	return nil
}

// normalize drops records without id and folds duplicate ids into the first occurrence
func normalize(accounts []StoredAccount) []StoredAccount {
	result := make([]StoredAccount, 0, len(accounts))
	index := make(map[string]int, len(accounts))

	for _, acc := range accounts {
		if acc.ID == "" {
			continue
		}
		if i, seen := index[acc.ID]; seen {
			merge(&result[i], acc)
			continue
		}
		index[acc.ID] = len(result)
		result = append(result, acc)
	}

	return result
}
