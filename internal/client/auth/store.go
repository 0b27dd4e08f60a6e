package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/iudanet/lostlibrary/internal/client/storage"
)

const (
	// SessionKey is the local storage key of the active session
	SessionKey = "lostlibrary.auth"

	sessionVersion = 1
)

type sessionRecord struct {
	Session *Session `json:"session"`
	Version int      `json:"version"`
}

// SessionStore keeps the active session.
// It is read once from local storage and then served from memory; when local
// storage is broken the session simply lives for the process lifetime.
type SessionStore struct {
	kv      storage.KV
	logger  *slog.Logger
	current *Session
	mu      sync.Mutex
	loaded  bool
}

// NewSessionStore creates a session store on top of local storage
func NewSessionStore(kv storage.KV, logger *slog.Logger) *SessionStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionStore{
		kv:     kv,
		logger: logger.With(slog.String("component", "session")),
	}
}

// Load returns a copy of the active session
func (s *SessionStore) Load(ctx context.Context) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		sess, err := s.read(ctx)
		if err != nil {
			s.logger.WarnContext(ctx, "active session unavailable", slog.Any("error", err))
		}
		s.current = sess
		s.loaded = true
	}

	if s.current == nil {
		return nil, false
	}
	cp := *s.current
	return &cp, true
}

// Save replaces the active session
func (s *SessionStore) Save(ctx context.Context, sess *Session) {
	cp := *sess

	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = &cp
	s.loaded = true

	data, err := json.Marshal(sessionRecord{Version: sessionVersion, Session: &cp})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to marshal session", slog.Any("error", err))
		return
	}
	if err := s.kv.Set(ctx, SessionKey, data); err != nil {
		s.logger.WarnContext(ctx, "session kept in memory only", slog.Any("error", err))
	}
}

// Clear forgets the active session
func (s *SessionStore) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = nil
	s.loaded = true

	if err := s.kv.Remove(ctx, SessionKey); err != nil {
		s.logger.WarnContext(ctx, "failed to remove stored session", slog.Any("error", err))
	}
}

func (s *SessionStore) read(ctx context.Context) (*Session, error) {
	data, ok, err := s.kv.Get(ctx, SessionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var rec sessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	if rec.Version != sessionVersion {
		return nil, fmt.Errorf("unsupported session record version %d", rec.Version)
	}
	if rec.Session == nil || rec.Session.UserID == "" || rec.Session.AccessToken == "" {
		return nil, nil
	}
	return rec.Session, nil
}
