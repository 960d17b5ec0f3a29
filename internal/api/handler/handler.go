package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"showcase/internal/common"
	"showcase/internal/common/security"
)

const maxBodyBytes = 1 << 20

// Paginated is the envelope for list endpoints.
type Paginated[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// decodeJSON reads a size-limited JSON body into dst, answering 400 itself on
// failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return false
	}
	return true
}

func pagination(r *http.Request) (page, pageSize int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page <= 0 {
		page = 1
	}
	pageSize, _ = strconv.Atoi(r.URL.Query().Get("pageSize"))
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

// SessionCookies writes and clears the per-kind session cookies.
type SessionCookies struct {
	Secure bool
}

func (c SessionCookies) Set(w http.ResponseWriter, kind security.Kind, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     security.CookieName(kind),
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear expires the cookie immediately with an empty value.
func (c SessionCookies) Clear(w http.ResponseWriter, kind security.Kind) {
	http.SetCookie(w, &http.Cookie{
		Name:     security.CookieName(kind),
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func creatorFrom(w http.ResponseWriter, r *http.Request) (security.Creator, bool) {
	c, ok := security.CreatorFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing creator context")
	}
	return c, ok
}

func adminFrom(w http.ResponseWriter, r *http.Request) (security.Admin, bool) {
	a, ok := security.AdminFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing admin context")
	}
	return a, ok
}
