package model

import (
	"encoding/json"
	"time"
)

type Admin struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Not exposed
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// SocialLinks maps a platform name (e.g. "github") to a profile URL.
type SocialLinks map[string]string

type Creator struct {
	ID              string      `json:"id"`
	Email           string      `json:"email,omitempty"`
	PasswordHash    string      `json:"-"` // Not exposed
	DisplayName     string      `json:"display_name"`
	Bio             string      `json:"bio"`
	AvatarURL       string      `json:"avatar_url"`
	SocialLinks     SocialLinks `json:"social_links"`
	TermsAcceptedAt *time.Time  `json:"terms_accepted_at,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// Public strips fields only the creator themself may see.
func (c Creator) Public() Creator {
	c.Email = ""
	c.PasswordHash = ""
	c.TermsAcceptedAt = nil
	return c
}

// MarshalSocialLinks encodes links for a JSONB column; nil becomes {}.
func MarshalSocialLinks(links SocialLinks) ([]byte, error) {
	if links == nil {
		links = SocialLinks{}
	}
	return json.Marshal(links)
}
