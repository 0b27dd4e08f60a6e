package models

import "time"

// User представляет пользователя в системе
type User struct {
	CreatedAt    time.Time  `json:"created_at"`           // время создания
	LastLoginAt  *time.Time `json:"last_login,omitempty"` // время последнего входа
	ID           string     `json:"id"`                   // UUID пользователя
	Email        string     `json:"email"`                // уникальный email в нижнем регистре
	PasswordHash string     `json:"-"`                    // argon2id хеш пароля
}

// RefreshToken представляет refresh token пользователя.
// Сам токен не хранится, только его SHA256 хеш.
type RefreshToken struct {
	ExpiresAt time.Time `json:"expires_at"` // время истечения
	CreatedAt time.Time `json:"created_at"` // время создания
	TokenHash string    `json:"token_hash"` // SHA256 хеш токена
	UserID    string    `json:"user_id"`    // ID пользователя
}

// Expired сообщает, истек ли токен к моменту now
func (t *RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
