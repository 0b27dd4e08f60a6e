package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/iudanet/lostlibrary/internal/client/accounts"
	"github.com/iudanet/lostlibrary/internal/client/api"
	"github.com/iudanet/lostlibrary/internal/client/auth"
	"github.com/iudanet/lostlibrary/internal/client/identity"
	"github.com/iudanet/lostlibrary/internal/validation"
)

// PasswordEnv allows non-interactive sign in
const PasswordEnv = "LOSTLIBRARY_PASSWORD"

// errCancelled возвращается, когда пользователь отказался от ввода
var errCancelled = errors.New("cancelled")

// readPassword получает пароль из различных источников с приоритетом:
// 1. Переменная окружения LOSTLIBRARY_PASSWORD
// 2. Файл из --password-file
// 3. Интерактивный ввод
// interactive сообщает, был ли пароль введен пользователем.
func (a *App) readPassword(file, prompt string) (password string, interactive bool, err error) {
	if a.lookup != nil {
		if env, ok := a.lookup(PasswordEnv); ok && env != "" {
			return env, false, nil
		}
	}

	if file != "" {
		content, err := os.ReadFile(file)
		if err != nil {
			return "", false, fmt.Errorf("failed to read password file: %w", err)
		}
		// Убираем trailing newline/whitespace
		password := strings.TrimSpace(string(content))
		if password == "" {
			return "", false, errors.New("password file is empty")
		}
		return password, false, nil
	}

	password, err = a.io.ReadPassword(prompt)
	if err != nil {
		return "", true, fmt.Errorf("failed to read password: %w", err)
	}
	return password, true, nil
}

// readEmail берет email из аргументов или спрашивает его
func (a *App) readEmail(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	email, err := a.io.ReadInput("Email: ")
	if err != nil {
		return "", fmt.Errorf("failed to read email: %w", err)
	}
	return email, nil
}

// requireUser возвращает текущего пользователя или ErrNotSignedIn
func (a *App) requireUser(ctx context.Context) (identity.Identity, error) {
	current := a.auth.Current(ctx)
	if current.IsZero() {
		return identity.Identity{}, auth.ErrNotSignedIn
	}
	return current, nil
}

// resolveAccount ищет сохраненный аккаунт по id или email
func (a *App) resolveAccount(ctx context.Context, ref string) (accounts.StoredAccount, bool) {
	if acc, ok := a.accounts.Get(ctx, ref); ok {
		return acc, true
	}
	return a.accounts.FindByEmail(ctx, ref)
}

// userMessage переводит ошибки слоев в текст для пользователя
func userMessage(err error) string {
	var vErr *validation.ValidationError
	switch {
	case errors.As(err, &vErr):
		return vErr.Error()
	case errors.Is(err, errCancelled):
		return "cancelled"
	case errors.Is(err, auth.ErrSessionExpired):
		return "session expired, run 'lostlibrary login' again"
	case errors.Is(err, auth.ErrNotSignedIn):
		return "not signed in, run 'lostlibrary login' first"
	case errors.Is(err, api.ErrUnauthorized):
		return "invalid email or password"
	case errors.Is(err, api.ErrBackendUnavailable):
		return "server is unavailable, try again later"
	case errors.Is(err, api.ErrNotFound):
		return "not found"
	}

	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Local().Format("2006-01-02 15:04")
}
