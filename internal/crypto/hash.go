package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// TokenSize - размер случайного refresh token в байтах
const TokenSize = 32

// GenerateToken создает случайный непрозрачный токен (base64url без паддинга)
func GenerateToken() (string, error) {
	b := make([]byte, TokenSize)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// HashToken хеширует refresh token с использованием SHA256.
// В БД хранится только хеш, поэтому утечка таблицы не раскрывает сессии.
// Токен сам по себе случайный, соль и Argon2 здесь не нужны.
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
