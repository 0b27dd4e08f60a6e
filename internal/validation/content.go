package validation

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/iudanet/lostlibrary/pkg/api"
)

// SlugPattern: строчные латинские буквы, цифры и одиночные дефисы
var SlugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

const (
	MaxSlugLen    = 128
	MaxTitleLen   = 200
	MaxExcerptLen = 500
	MaxBioLen     = 1000
	MaxNameLen    = 100
)

// ValidateSlug проверяет slug статьи
func ValidateSlug(slug string) error {
	if slug == "" {
		return invalid("slug", "cannot be empty")
	}
	if len(slug) > MaxSlugLen {
		return invalid("slug", "must not exceed %d characters", MaxSlugLen)
	}
	if !SlugPattern.MatchString(slug) {
		return invalid("slug", "can only contain lowercase letters, numbers and single dashes")
	}
	return nil
}

// ValidateCategory допускает пустую категорию или одну из известных
func ValidateCategory(category string) error {
	if category == "" || api.IsCategory(category) {
		return nil
	}
	return invalid("category", "is not a known category")
}

// ValidateURL допускает пустую строку или абсолютный http(s) URL
func ValidateURL(field, raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return invalid(field, "must be an http or https URL")
	}
	return nil
}

// ValidateArticle проверяет запрос на создание статьи
func ValidateArticle(req api.CreateArticleRequest) error {
	if strings.TrimSpace(req.Title) == "" {
		return invalid("title", "cannot be empty")
	}
	if utf8.RuneCountInString(req.Title) > MaxTitleLen {
		return invalid("title", "must not exceed %d characters", MaxTitleLen)
	}
	if err := ValidateSlug(req.Slug); err != nil {
		return err
	}
	if utf8.RuneCountInString(req.Excerpt) > MaxExcerptLen {
		return invalid("excerpt", "must not exceed %d characters", MaxExcerptLen)
	}
	if err := ValidateCategory(req.Category); err != nil {
		return err
	}
	return ValidateURL("image_url", req.ImageURL)
}

// ValidateProfile проверяет изменения профиля. Пустой username допустим.
func ValidateProfile(req api.UpdateProfileRequest) error {
	if req.Username != "" {
		if err := ValidateUsername(req.Username); err != nil {
			return err
		}
	}
	if utf8.RuneCountInString(req.FullName) > MaxNameLen {
		return invalid("full_name", "must not exceed %d characters", MaxNameLen)
	}
	if utf8.RuneCountInString(req.Bio) > MaxBioLen {
		return invalid("bio", "must not exceed %d characters", MaxBioLen)
	}
	if err := ValidateURL("website", req.Website); err != nil {
		return err
	}
	return ValidateURL("avatar_url", req.AvatarURL)
}
