// Package accounts keeps the device-local list of accounts that have signed in
// on this device, together with their last known backend session.
//
// The list is a cache, not a source of truth: losing it only means the user has
// to type a password again. Because of that every operation degrades to an empty
// result when local storage is broken instead of returning an error.
package accounts

import "time"

// StoredAccount is the snapshot kept for one account ever signed into on this device.
//
// Display fields are the last known values, not live data. The session fields are
// empty when a session was never captured or has been invalidated.
type StoredAccount struct {
	AddedAt    time.Time `json:"added_at,omitzero"`
	LastUsedAt time.Time `json:"last_used_at,omitzero"`
	CapturedAt time.Time `json:"captured_at,omitzero"`

	ID        string `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username,omitempty"`
	FullName  string `json:"full_name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`

	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresAt    int64  `json:"expires_at,omitempty"` // unix-время истечения access token
}

// HasSession reports whether a refresh token is stored for silent restore.
func (a StoredAccount) HasSession() bool {
	return a.RefreshToken != ""
}

// DisplayName picks the best available human name for the account.
func (a StoredAccount) DisplayName() string {
	switch {
	case a.FullName != "":
		return a.FullName
	case a.Username != "":
		return a.Username
	default:
		return a.Email
	}
}

// merge copies every non-zero field of src into dst. Fields that src leaves
// empty keep their stored value.
func merge(dst *StoredAccount, src StoredAccount) {
	if src.Email != "" {
		dst.Email = src.Email
	}
	if src.Username != "" {
		dst.Username = src.Username
	}
	if src.FullName != "" {
		dst.FullName = src.FullName
	}
	if src.AvatarURL != "" {
		dst.AvatarURL = src.AvatarURL
	}
	if src.AccessToken != "" {
		dst.AccessToken = src.AccessToken
	}
	if src.RefreshToken != "" {
		dst.RefreshToken = src.RefreshToken
	}
	if src.ExpiresAt != 0 {
		dst.ExpiresAt = src.ExpiresAt
	}
	if !src.CapturedAt.IsZero() {
		dst.CapturedAt = src.CapturedAt
	}
	if !src.LastUsedAt.IsZero() {
		dst.LastUsedAt = src.LastUsedAt
	}
}
