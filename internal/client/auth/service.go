package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/iudanet/lostlibrary/internal/client/accounts"
	"github.com/iudanet/lostlibrary/internal/client/api"
	"github.com/iudanet/lostlibrary/internal/client/identity"
	"github.com/iudanet/lostlibrary/internal/validation"
	pkgapi "github.com/iudanet/lostlibrary/pkg/api"
)

// Service предоставляет функции авторизации: вход, выход и
// сохранение/восстановление сессий для переключения аккаунтов
type Service struct {
	backend  Backend
	profiles ProfileLookup
	accounts AccountStore
	sessions *SessionStore
	notifier *identity.Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewService создает новый сервис авторизации.
// profiles и notifier могут быть nil.
func NewService(
	backend Backend,
	profiles ProfileLookup,
	accountStore AccountStore,
	sessions *SessionStore,
	notifier *identity.Notifier,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = identity.NewNotifier()
	}
	return &Service{
		backend:  backend,
		profiles: profiles,
		accounts: accountStore,
		sessions: sessions,
		notifier: notifier,
		logger:   logger.With(slog.String("component", "auth")),
		now:      time.Now,
	}
}

// Notifier returns the notifier identity changes are published on
func (s *Service) Notifier() *identity.Notifier {
	return s.notifier
}

// ActiveSession returns the session the client is currently authorized with
func (s *Service) ActiveSession(ctx context.Context) (*Session, bool) {
	return s.sessions.Load(ctx)
}

// Current returns the signed-in identity, zero when nobody is signed in
func (s *Service) Current(ctx context.Context) identity.Identity {
	sess, _ := s.sessions.Load(ctx)
	return sess.Identity()
}

// SignUp регистрирует новый аккаунт. Вход не выполняется.
func (s *Service) SignUp(ctx context.Context, email, password string) (*pkgapi.SignUpResponse, error) {
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidateNewPassword(password); err != nil {
		return nil, err
	}

	resp, err := s.backend.SignUp(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("sign up failed: %w", err)
	}

	s.logger.InfoContext(ctx, "account created", slog.String("user_id", resp.UserID))
	return resp, nil
}

// SignIn выполняет вход по паролю, делает сессию активной и
// сохраняет ее в локальном списке аккаунтов
func (s *Service) SignIn(ctx context.Context, email, password string) (*Session, error) {
	// Проверка до любого сетевого запроса
	if err := validation.ValidateCredentials(email, password); err != nil {
		return nil, err
	}

	resp, err := s.backend.SignInWithPassword(ctx, email, password)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("sign in abandoned: %w", ctxErr)
		}
		return nil, fmt.Errorf("sign in failed: %w", err)
	}

	sess := newSession(resp, s.now())
	if sess.UserID == "" {
		return nil, errors.New("sign in failed: backend returned no user")
	}

	// Вход отменили, пока шел запрос: сессию не активируем, а выданную
	// сервером отзываем, чтобы она не осталась висеть
	if ctxErr := ctx.Err(); ctxErr != nil {
		if err := s.backend.SignOut(context.WithoutCancel(ctx), sess.AccessToken, sess.RefreshToken); err != nil {
			s.logger.WarnContext(ctx, "failed to revoke abandoned session", slog.Any("error", err))
		}
		return nil, fmt.Errorf("sign in abandoned: %w", ctxErr)
	}

	prev := s.Current(ctx)
	s.sessions.Save(ctx, sess)

	// Ошибки сохранения аккаунта не должны ломать вход
	s.CaptureSession(ctx, sess.UserID)

	reason := identity.ReasonSignedIn
	if !prev.IsZero() && prev.UserID != sess.UserID {
		reason = identity.ReasonSwitched
	}
	s.publish(prev, sess.Identity(), reason)

	s.logger.InfoContext(ctx, "signed in", slog.String("user_id", sess.UserID))
	return sess, nil
}

// CaptureSession копирует активную сессию в сохраненный аккаунт accountID.
// Никогда не возвращает ошибку: при отсутствии сессии только пишет в лог.
func (s *Service) CaptureSession(ctx context.Context, accountID string) {
	sess, ok := s.sessions.Load(ctx)
	if !ok {
		s.logger.InfoContext(ctx, "no active session to capture", slog.String("account_id", accountID))
		return
	}
	if sess.UserID != accountID {
		s.logger.WarnContext(ctx, "active session belongs to another account",
			slog.String("account_id", accountID),
			slog.String("session_user_id", sess.UserID))
		return
	}

	now := s.now()
	acc := accounts.StoredAccount{
		ID:           sess.UserID,
		Email:        sess.Email,
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		ExpiresAt:    sess.ExpiresAt,
		CapturedAt:   now,
		LastUsedAt:   now,
	}

	if s.profiles != nil {
		profile, err := s.profiles.GetProfile(ctx, accountID)
		if err != nil {
			s.logger.WarnContext(ctx, "failed to fetch profile for account snapshot",
				slog.String("account_id", accountID), slog.Any("error", err))
		} else {
			acc.Username = profile.Username
			acc.FullName = profile.FullName
			acc.AvatarURL = profile.AvatarURL
		}
	}

	s.accounts.Upsert(ctx, acc)
	s.logger.DebugContext(ctx, "session captured", slog.String("account_id", accountID))
}

// RestoreSession пытается без пароля восстановить сессию аккаунта по
// сохраненному refresh token. Ровно одна попытка, без повторов.
// Ожидаемые неудачи возвращаются как *RestoreError.
func (s *Service) RestoreSession(ctx context.Context, accountID string) (*Session, error) {
	acc, ok := s.accounts.Get(ctx, accountID)
	if !ok || !acc.HasSession() {
		return nil, &RestoreError{AccountID: accountID, Reason: ReasonNoStoredSession}
	}

	resp, err := s.backend.ExchangeRefreshToken(ctx, acc.RefreshToken)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("restore abandoned: %w", ctxErr)
		}
		if errors.Is(err, api.ErrUnauthorized) {
			s.logger.InfoContext(ctx, "stored session revoked", slog.String("account_id", accountID))
			s.accounts.ClearSession(ctx, accountID)
			return nil, &RestoreError{AccountID: accountID, Reason: ReasonTokenExpiredOrRevoked, Err: err}
		}
		s.logger.WarnContext(ctx, "restore failed", slog.String("account_id", accountID), slog.Any("error", err))
		return nil, &RestoreError{AccountID: accountID, Reason: ReasonBackendUnavailable, Err: err}
	}

	sess := newSession(resp, s.now())
	if sess.UserID != accountID {
		// Токен выдан другому пользователю: хранить его под этим аккаунтом нельзя
		s.logger.ErrorContext(ctx, "restored session belongs to another user",
			slog.String("account_id", accountID),
			slog.String("session_user_id", sess.UserID))
		s.accounts.ClearSession(ctx, accountID)
		return nil, &RestoreError{AccountID: accountID, Reason: ReasonTokenExpiredOrRevoked}
	}

	// Старый refresh token уже израсходован, новый сохраняем даже если
	// переключение успели отменить. Запись идет по id и ничего чужого не трогает.
	now := s.now()
	s.accounts.Upsert(ctx, accounts.StoredAccount{
		ID:           sess.UserID,
		Email:        sess.Email,
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		ExpiresAt:    sess.ExpiresAt,
		CapturedAt:   now,
	})

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("restore abandoned: %w", ctxErr)
	}

	prev := s.Current(ctx)
	s.sessions.Save(ctx, sess)
	s.accounts.Upsert(ctx, accounts.StoredAccount{ID: sess.UserID, LastUsedAt: now})
	s.publish(prev, sess.Identity(), identity.ReasonSwitched)

	s.logger.InfoContext(ctx, "session restored", slog.String("account_id", accountID))
	return sess, nil
}

// EnsureFresh возвращает активную сессию, при необходимости обновив access token
func (s *Service) EnsureFresh(ctx context.Context) (*Session, error) {
	sess, ok := s.sessions.Load(ctx)
	if !ok {
		return nil, ErrNotSignedIn
	}
	if !sess.Expired(s.now()) {
		return sess, nil
	}

	resp, err := s.backend.ExchangeRefreshToken(ctx, sess.RefreshToken)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			s.logger.InfoContext(ctx, "active session revoked", slog.String("user_id", sess.UserID))
			s.sessions.Clear(ctx)
			s.accounts.ClearSession(ctx, sess.UserID)
			s.publish(sess.Identity(), identity.Identity{}, identity.ReasonSignedOut)
			return nil, ErrSessionExpired
		}
		return nil, fmt.Errorf("failed to refresh session: %w", err)
	}

	fresh := newSession(resp, s.now())
	s.sessions.Save(ctx, fresh)
	s.accounts.Upsert(ctx, accounts.StoredAccount{
		ID:           fresh.UserID,
		AccessToken:  fresh.AccessToken,
		RefreshToken: fresh.RefreshToken,
		ExpiresAt:    fresh.ExpiresAt,
		CapturedAt:   s.now(),
	})

	s.logger.DebugContext(ctx, "access token refreshed", slog.String("user_id", fresh.UserID))
	return fresh, nil
}

// AccessToken возвращает действующий access token активной сессии
func (s *Service) AccessToken(ctx context.Context) (string, error) {
	sess, err := s.EnsureFresh(ctx)
	if err != nil {
		return "", err
	}
	return sess.AccessToken, nil
}

// SignOut выполняет выход из системы.
// Сервер уведомляется по возможности; локальная сессия удаляется всегда.
func (s *Service) SignOut(ctx context.Context) error {
	sess, ok := s.sessions.Load(ctx)
	if !ok {
		return nil
	}

	if err := s.backend.SignOut(ctx, sess.AccessToken, sess.RefreshToken); err != nil {
		// Не прерываем процесс, если сервер недоступен
		s.logger.WarnContext(ctx, "failed to sign out on server", slog.Any("error", err))
	}

	s.sessions.Clear(ctx)
	// refresh token этой сессии отозван, восстановить по нему уже нельзя
	s.accounts.ClearSession(ctx, sess.UserID)
	s.publish(sess.Identity(), identity.Identity{}, identity.ReasonSignedOut)

	s.logger.InfoContext(ctx, "signed out", slog.String("user_id", sess.UserID))
	return nil
}

func (s *Service) publish(prev, current identity.Identity, reason identity.Reason) {
	if prev == current {
		return
	}
	s.notifier.Publish(identity.Change{Previous: prev, Current: current, Reason: reason})
}
