package validation

import (
	"net/mail"
	"strings"
	"unicode/utf8"
)

const (
	// MinPasswordLen минимальная длина пароля при регистрации
	MinPasswordLen = 8
	// MaxPasswordLen ограничивает стоимость хеширования
	MaxPasswordLen = 128
	// MaxEmailLen максимальная длина email (RFC 5321)
	MaxEmailLen = 254
)

// ValidateEmail проверяет, что строка является одним адресом без display name
func ValidateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return invalid("email", "cannot be empty")
	}
	if len(email) > MaxEmailLen {
		return invalid("email", "must not exceed %d characters", MaxEmailLen)
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return invalid("email", "is not a valid address")
	}

	return nil
}

// ValidatePassword проверяет пароль при входе: только наличие.
// Требования к сложности проверяются при регистрации.
func ValidatePassword(password string) error {
	if password == "" {
		return invalid("password", "cannot be empty")
	}
	if len(password) > MaxPasswordLen {
		return invalid("password", "must not exceed %d characters", MaxPasswordLen)
	}
	return nil
}

// ValidateNewPassword проверяет пароль нового аккаунта
func ValidateNewPassword(password string) error {
	if err := ValidatePassword(password); err != nil {
		return err
	}
	if utf8.RuneCountInString(password) < MinPasswordLen {
		return invalid("password", "must be at least %d characters long", MinPasswordLen)
	}
	return nil
}

// ValidateCredentials проверяет email и пароль перед входом
func ValidateCredentials(email, password string) error {
	if err := ValidateEmail(email); err != nil {
		return err
	}
	return ValidatePassword(password)
}

// NormalizeEmail приводит email к виду, в котором он хранится на сервере
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
