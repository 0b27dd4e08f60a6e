package storage

import "errors"

// Common storage errors
var (
	// ErrUserNotFound indicates that user was not found in storage
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates that user with this email already exists
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrTokenNotFound indicates that refresh token was not found
	ErrTokenNotFound = errors.New("refresh token not found")

	// ErrProfileNotFound indicates that profile was not found
	ErrProfileNotFound = errors.New("profile not found")

	// ErrUsernameTaken indicates that another profile already uses the username
	ErrUsernameTaken = errors.New("username already taken")

	// ErrArticleNotFound indicates that a published article was not found
	ErrArticleNotFound = errors.New("article not found")

	// ErrSlugTaken indicates that another article already uses the slug
	ErrSlugTaken = errors.New("slug already taken")
)
