package models

import "time"

// Profile is the public profile of a user, created empty at sign up
type Profile struct {
	UpdatedAt time.Time
	UserID    string
	Username  string
	FullName  string
	AvatarURL string
	Bio       string
	Website   string
}

// Article is a history article. Only published articles are visible to readers.
type Article struct {
	CreatedAt   time.Time
	PublishedAt *time.Time
	ID          string
	UserID      string
	Title       string
	Slug        string
	Excerpt     string
	Content     string
	Category    string
	ImageURL    string
	ViewCount   int64
	LikeCount   int64
}

// IsPublished reports whether readers can see the article
func (a *Article) IsPublished() bool {
	return a.PublishedAt != nil
}

// ArticleFilter selects published articles for the feed
type ArticleFilter struct {
	Category string
	IDs      []string
	Limit    int
}
