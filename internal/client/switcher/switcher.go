// Package switcher drives switching between accounts stored on this device.
//
// The flow is Idle → AccountListShown → RestoringSession → Active, falling
// back to PromptingPassword when the silent restore fails. From the prompt the
// user either signs in (Active) or gives up (Cancelled, then Idle).
package switcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/iudanet/lostlibrary/internal/client/accounts"
	"github.com/iudanet/lostlibrary/internal/client/auth"
)

// ErrInvalidTransition is returned when an action is not allowed in the current state
var ErrInvalidTransition = errors.New("invalid switcher transition")

// ErrUnknownAccount is returned when the chosen account is not in the local store
var ErrUnknownAccount = errors.New("account is not stored on this device")

//go:generate moq -out sessions_mock.go . Sessions

// Sessions is what the switcher needs from the auth service
type Sessions interface {
	RestoreSession(ctx context.Context, accountID string) (*auth.Session, error)
	SignIn(ctx context.Context, email, password string) (*auth.Session, error)
}

// AccountLister provides the stored accounts
type AccountLister interface {
	List(ctx context.Context) []accounts.StoredAccount
	Get(ctx context.Context, id string) (accounts.StoredAccount, bool)
}

// Switcher is the account switch state machine.
// The mutex guards fields only and is never held across a backend call;
// re-entrant actions are rejected by the state check instead.
type Switcher struct {
	sessions Sessions
	accounts AccountLister
	logger   *slog.Logger

	cancelRestore context.CancelFunc
	chosen        accounts.StoredAccount
	prompt        Prompt
	lastErr       error
	state         State
	generation    uint64
	mu            sync.Mutex
}

// New creates a switcher in the Idle state
func New(sessions Sessions, accountList AccountLister, logger *slog.Logger) *Switcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Switcher{
		sessions: sessions,
		accounts: accountList,
		logger:   logger.With(slog.String("component", "switcher")),
		state:    StateIdle,
	}
}

// State returns the current state
func (s *Switcher) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Prompt returns the password form state; meaningful in PromptingPassword
func (s *Switcher) Prompt() Prompt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prompt
}

// LastError returns why the last silent restore failed, if it did
func (s *Switcher) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Open shows the account list. Allowed from Idle and from the terminal states.
func (s *Switcher) Open(ctx context.Context) ([]accounts.StoredAccount, error) {
	s.mu.Lock()
	switch s.state {
	case StateIdle, StateActive, StateCancelled, StateAccountListShown:
	default:
		state := s.state
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: open from %s", ErrInvalidTransition, state)
	}
	s.resetLocked()
	s.state = StateAccountListShown
	s.mu.Unlock()

	return s.accounts.List(ctx), nil
}

// Choose starts switching to accountID.
// It returns Active when the stored session was restored and PromptingPassword
// when the user has to type the password.
func (s *Switcher) Choose(ctx context.Context, accountID string) (State, error) {
	s.mu.Lock()
	if s.state != StateAccountListShown {
		state := s.state
		s.mu.Unlock()
		return state, fmt.Errorf("%w: choose from %s", ErrInvalidTransition, state)
	}

	acc, ok := s.accounts.Get(ctx, accountID)
	if !ok {
		s.mu.Unlock()
		return StateAccountListShown, ErrUnknownAccount
	}

	s.generation++
	gen := s.generation
	s.chosen = acc

	// Без сохраненной сессии восстанавливать нечего: сразу форма пароля
	if !acc.HasSession() {
		defer s.mu.Unlock()
		s.logger.InfoContext(ctx, "no stored session, asking for password", slog.String("account_id", accountID))
		s.enterPromptLocked(acc, &auth.RestoreError{AccountID: accountID, Reason: auth.ReasonNoStoredSession})
		return s.state, nil
	}

	restoreCtx, cancel := context.WithCancel(ctx)
	s.cancelRestore = cancel
	s.state = StateRestoringSession
	s.mu.Unlock()

	_, err := s.sessions.RestoreSession(restoreCtx, accountID)
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Переключение отменили, пока шел запрос: результат выбрасываем
	if s.generation != gen || s.state != StateRestoringSession {
		return s.state, fmt.Errorf("%w: restore abandoned", ErrInvalidTransition)
	}
	s.cancelRestore = nil

	if err == nil {
		s.logger.InfoContext(ctx, "switched account", slog.String("account_id", accountID))
		s.enterActiveLocked()
		return s.state, nil
	}

	reason, _ := auth.ReasonOf(err)
	s.logger.InfoContext(ctx, "silent restore failed, asking for password",
		slog.String("account_id", accountID),
		slog.String("reason", string(reason)),
		slog.Any("error", err))

	s.enterPromptLocked(acc, err)
	return s.state, nil
}

func (s *Switcher) enterPromptLocked(acc accounts.StoredAccount, cause error) {
	s.lastErr = cause
	s.state = StatePromptingPassword
	s.prompt = Prompt{
		Email:         acc.Email,
		EmailReadOnly: true,
		FocusPassword: true,
	}
}

// SubmitPassword signs in with the prefilled email.
// On failure the state stays PromptingPassword and Prompt().Error is set.
// Cancel during the sign in aborts it and its outcome is discarded.
func (s *Switcher) SubmitPassword(ctx context.Context, password string) error {
	s.mu.Lock()
	if s.state != StatePromptingPassword {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: submit password from %s", ErrInvalidTransition, state)
	}
	if s.cancelRestore != nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: sign in already in progress", ErrInvalidTransition)
	}

	// Cancel прерывает вход через этот контекст
	signInCtx, cancel := context.WithCancel(ctx)
	email := s.prompt.Email
	gen := s.generation
	s.cancelRestore = cancel
	s.prompt.Error = ""
	s.mu.Unlock()

	sess, err := s.sessions.SignIn(signInCtx, email, password)
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation != gen || s.state != StatePromptingPassword {
		return fmt.Errorf("%w: prompt closed", ErrInvalidTransition)
	}
	s.cancelRestore = nil

	if err != nil {
		s.prompt.Error = err.Error()
		return err
	}

	if s.chosen.ID != "" && sess.UserID != s.chosen.ID {
		// Такое возможно, только если email сменил владельца на сервере
		s.logger.WarnContext(ctx, "signed in as a different account than chosen",
			slog.String("chosen_id", s.chosen.ID),
			slog.String("user_id", sess.UserID))
	}

	s.logger.InfoContext(ctx, "switched account with password", slog.String("account_id", sess.UserID))
	s.enterActiveLocked()
	return nil
}

// Cancel abandons the flow. An in-flight restore is cancelled and its
// outcome discarded. The switcher ends up Idle.
func (s *Switcher) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancelRestore != nil {
		s.cancelRestore()
	}
	s.generation++
	s.state = StateCancelled
	s.resetLocked()
	s.state = StateIdle
}

// Close hides the switcher after a completed switch
func (s *Switcher) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateActive {
		s.resetLocked()
		s.state = StateIdle
	}
}

func (s *Switcher) enterActiveLocked() {
	s.resetLocked()
	s.state = StateActive
}

// resetLocked clears the transient state of the flow
func (s *Switcher) resetLocked() {
	s.cancelRestore = nil
	s.chosen = accounts.StoredAccount{}
	s.prompt = Prompt{}
	s.lastErr = nil
}
