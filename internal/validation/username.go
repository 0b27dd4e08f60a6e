package validation

import (
	"regexp"
)

// UsernamePattern определяет допустимый формат username профиля
// Только латинские буквы (a-z, A-Z), цифры (0-9), нижнее подчеркивание (_)
// Длина: 3-32 символа
var UsernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,32}$`)

const (
	// MinUsernameLen минимальная длина username
	MinUsernameLen = 3
	// MaxUsernameLen максимальная длина username
	MaxUsernameLen = 32
)

// ValidateUsername проверяет, что username соответствует требованиям
// Формат: только латинские буквы (a-z, A-Z), цифры (0-9), нижнее подчеркивание (_)
// Длина: 3-32 символа
func ValidateUsername(username string) error {
	if username == "" {
		return invalid("username", "cannot be empty")
	}

	if len(username) < MinUsernameLen {
		return invalid("username", "must be at least %d characters long", MinUsernameLen)
	}

	if len(username) > MaxUsernameLen {
		return invalid("username", "must not exceed %d characters", MaxUsernameLen)
	}

	if !UsernamePattern.MatchString(username) {
		return invalid("username", "can only contain letters (a-z, A-Z), numbers (0-9), and underscores (_)")
	}

	return nil
}
