package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/lostlibrary/internal/client/storage"
	pkgapi "github.com/iudanet/lostlibrary/pkg/api"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := token.SignedString([]byte("server-only-secret"))
	require.NoError(t, err)
	return s
}

func TestNewSession_ExpirySources(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	exp := now.Add(15 * time.Minute)

	t.Run("explicit expires_at", func(t *testing.T) {
		sess := newSession(&pkgapi.SessionResponse{ExpiresAt: 42, ExpiresIn: 900}, now)
		assert.Equal(t, int64(42), sess.ExpiresAt)
	})

	t.Run("expires_in", func(t *testing.T) {
		sess := newSession(&pkgapi.SessionResponse{ExpiresIn: 900}, now)
		assert.Equal(t, exp.Unix(), sess.ExpiresAt)
	})

	t.Run("jwt exp claim", func(t *testing.T) {
		sess := newSession(&pkgapi.SessionResponse{AccessToken: signedToken(t, exp)}, now)
		assert.Equal(t, exp.Unix(), sess.ExpiresAt)
	})

	t.Run("opaque token", func(t *testing.T) {
		sess := newSession(&pkgapi.SessionResponse{AccessToken: "opaque"}, now)
		assert.Zero(t, sess.ExpiresAt)
	})
}

func TestSession_Expired(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	assert.False(t, (&Session{}).Expired(now))
	assert.False(t, (&Session{ExpiresAt: now.Add(time.Hour).Unix()}).Expired(now))
	assert.True(t, (&Session{ExpiresAt: now.Add(10 * time.Second).Unix()}).Expired(now))
	assert.True(t, (&Session{ExpiresAt: now.Add(-time.Hour).Unix()}).Expired(now))
}

func TestSessionStore_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()

	first := NewSessionStore(kv, nil)
	first.Save(ctx, &Session{UserID: "u", Email: "u@example.com", AccessToken: "a", RefreshToken: "r"})

	second := NewSessionStore(kv, nil)
	sess, ok := second.Load(ctx)
	require.True(t, ok)
	assert.Equal(t, "r", sess.RefreshToken)

	second.Clear(ctx)
	_, ok = NewSessionStore(kv, nil).Load(ctx)
	assert.False(t, ok)
}

func TestSessionStore_LoadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewSessionStore(storage.NewMemory(), nil)
	s.Save(ctx, &Session{UserID: "u", AccessToken: "a"})

	sess, _ := s.Load(ctx)
	sess.AccessToken = "mutated"

	again, _ := s.Load(ctx)
	assert.Equal(t, "a", again.AccessToken)
}

func TestSessionStore_UnavailableStorageKeepsMemory(t *testing.T) {
	ctx := context.Background()
	s := NewSessionStore(storage.Unavailable{}, nil)

	_, ok := s.Load(ctx)
	assert.False(t, ok)

	s.Save(ctx, &Session{UserID: "u", AccessToken: "a"})
	sess, ok := s.Load(ctx)
	require.True(t, ok)
	assert.Equal(t, "u", sess.UserID)

	s.Clear(ctx)
	_, ok = s.Load(ctx)
	assert.False(t, ok)
}

func TestSessionStore_IgnoresCorruptRecord(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	require.NoError(t, kv.Set(ctx, SessionKey, []byte(`{"version":9}`)))

	_, ok := NewSessionStore(kv, nil).Load(ctx)
	assert.False(t, ok)
}
