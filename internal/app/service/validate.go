package service

import (
	"net/mail"
	"net/url"
	"strings"
	"unicode/utf8"

	"showcase/internal/common"
)

const (
	minPasswordLength = 8
	maxNameLength     = 100
	maxTitleLength    = 200
	maxTextLength     = 5000
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return common.Validationf("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return common.Validationf("email %q is not a valid address", email)
	}
	return nil
}

func requireText(field, value string, max int) error {
	if strings.TrimSpace(value) == "" {
		return common.Validationf("%s is required", field)
	}
	return limitText(field, value, max)
}

func limitText(field, value string, max int) error {
	if utf8.RuneCountInString(value) > max {
		return common.Validationf("%s must be at most %d characters", field, max)
	}
	return nil
}

// validateHTTPURL accepts "" or an absolute http(s) URL.
func validateHTTPURL(field, raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return common.Validationf("%s must be an absolute http(s) URL", field)
	}
	return nil
}

// pageBounds mirrors the handler defaults: page from 1, size 1..100.
func pageBounds(page, pageSize int) (limit, offset int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return pageSize, (page - 1) * pageSize
}
