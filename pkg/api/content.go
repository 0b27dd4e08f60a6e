package api

import "time"

// Profile is the public part of a user's profile.
type Profile struct {
	ID        string `json:"id"`
	Username  string `json:"username,omitempty"`
	FullName  string `json:"full_name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Bio       string `json:"bio,omitempty"`
	Website   string `json:"website,omitempty"`
}

// UpdateProfileRequest replaces the caller's editable profile fields.
type UpdateProfileRequest struct {
	Username  string `json:"username"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url"`
	Bio       string `json:"bio"`
	Website   string `json:"website"`
}

// Article is a published history article as returned by the feed and lookups.
type Article struct {
	PublishedAt time.Time `json:"published_at"`
	Author      *Profile  `json:"author,omitempty"`
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Excerpt     string    `json:"excerpt,omitempty"`
	Content     string    `json:"content,omitempty"`
	Category    string    `json:"category,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	ViewCount   int64     `json:"view_count"`
	LikeCount   int64     `json:"like_count"`
}

// CreateArticleRequest creates a new article owned by the caller.
type CreateArticleRequest struct {
	Title    string `json:"title"`
	Slug     string `json:"slug"`
	Excerpt  string `json:"excerpt"`
	Content  string `json:"content"`
	Category string `json:"category"`
	ImageURL string `json:"image_url"`
	Publish  bool   `json:"publish"`
}

// MaxArticlesPerRequest is the largest page or ids batch the backend serves at once.
const MaxArticlesPerRequest = 100

// ArticlesResponse wraps a list of articles.
type ArticlesResponse struct {
	Articles []Article `json:"articles"`
}

// LikeStatus reports whether the caller likes an article and the total count.
type LikeStatus struct {
	ArticleID string `json:"article_id"`
	Liked     bool   `json:"liked"`
	Count     int64  `json:"count"`
}

// Categories lists the article categories accepted by the backend, in display order.
var Categories = []Category{
	{Value: "ancient-history", Label: "Ancient History"},
	{Value: "medieval-period", Label: "Medieval Period"},
	{Value: "renaissance", Label: "Renaissance"},
	{Value: "early-modern-period", Label: "Early Modern Period"},
	{Value: "industrial-age", Label: "Industrial Age"},
	{Value: "20th-century", Label: "20th Century"},
	{Value: "world-wars", Label: "World Wars"},
	{Value: "cold-war-era", Label: "Cold War Era"},
	{Value: "modern-history", Label: "Modern History"},
}

// Category is a feed filter value with its display label.
type Category struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// CategoryLabel returns the display label for a category value,
// "Uncategorized" for an empty value and the raw value when unknown.
func CategoryLabel(value string) string {
	if value == "" {
		return "Uncategorized"
	}
	for _, c := range Categories {
		if c.Value == value {
			return c.Label
		}
	}
	return value
}

// IsCategory reports whether value is one of the known categories.
func IsCategory(value string) bool {
	for _, c := range Categories {
		if c.Value == value {
			return true
		}
	}
	return false
}
