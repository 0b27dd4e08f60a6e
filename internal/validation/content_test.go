package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/lostlibrary/pkg/api"
)

func TestValidateSlug(t *testing.T) {
	valid := []string{"fall-of-rome", "ww2", "a"}
	for _, slug := range valid {
		assert.NoError(t, ValidateSlug(slug), slug)
	}

	invalidSlugs := []string{"", "Fall-Of-Rome", "double--dash", "-leading", "trailing-", "with space"}
	for _, slug := range invalidSlugs {
		assert.ErrorIs(t, ValidateSlug(slug), ErrInvalid, slug)
	}
}

func TestValidateCategory(t *testing.T) {
	assert.NoError(t, ValidateCategory(""))
	assert.NoError(t, ValidateCategory("cold-war-era"))
	assert.Error(t, ValidateCategory("prehistory"))
}

func TestValidateURL(t *testing.T) {
	assert.NoError(t, ValidateURL("website", ""))
	assert.NoError(t, ValidateURL("website", "https://history.example.com/me"))
	assert.Error(t, ValidateURL("website", "ftp://example.com"))
	assert.Error(t, ValidateURL("website", "not a url"))
}

func TestValidateArticle(t *testing.T) {
	req := api.CreateArticleRequest{
		Title:    "The Fall of Constantinople",
		Slug:     "fall-of-constantinople",
		Category: "medieval-period",
	}
	require.NoError(t, ValidateArticle(req))

	noTitle := req
	noTitle.Title = " "
	err := ValidateArticle(noTitle)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title cannot be empty")

	badCategory := req
	badCategory.Category = "future"
	assert.Error(t, ValidateArticle(badCategory))

	badImage := req
	badImage.ImageURL = "javascript:alert(1)"
	assert.Error(t, ValidateArticle(badImage))
}

func TestValidateProfile(t *testing.T) {
	require.NoError(t, ValidateProfile(api.UpdateProfileRequest{}))
	require.NoError(t, ValidateProfile(api.UpdateProfileRequest{
		Username: "historian",
		FullName: "Ada Reader",
		Website:  "https://example.com",
	}))

	err := ValidateProfile(api.UpdateProfileRequest{Username: "a b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "username")

	err = ValidateProfile(api.UpdateProfileRequest{Website: "example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "website")
}
