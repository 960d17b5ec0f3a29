package handler

import (
	"net/http"

	"showcase/internal/api/middleware"
	"showcase/internal/app/service"
	"showcase/internal/common"
	"showcase/internal/common/security"

	"github.com/go-chi/chi/v5"
)

type AuthHandler struct {
	authService *service.AuthService
	tokens      *security.TokenService
	cookies     SessionCookies
	adminRes    *security.Resolver
	creatorRes  *security.Resolver
}

func NewAuthHandler(authService *service.AuthService, tokens *security.TokenService, cookies SessionCookies, adminRes, creatorRes *security.Resolver) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		tokens:      tokens,
		cookies:     cookies,
		adminRes:    adminRes,
		creatorRes:  creatorRes,
	}
}

// RegisterRoutes mounts under /auth.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/admin/login", h.adminLogin)
	r.With(middleware.RequirePrincipal(h.adminRes)).Post("/admin/logout", h.logout(security.KindAdmin))

	r.Post("/creator/signup", h.creatorSignup)
	r.Post("/creator/login", h.creatorLogin)
	r.With(middleware.RequirePrincipal(h.creatorRes)).Post("/creator/logout", h.logout(security.KindCreator))
}

// RegisterAdminRoutes mounts under the authenticated /admin router.
func (h *AuthHandler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/me", h.adminMe)
}

func (h *AuthHandler) adminLogin(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.authService.AdminLogin(r.Context(), req)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	h.cookies.Set(w, security.KindAdmin, resp.Token, h.tokens.TTL(security.KindAdmin))
	common.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) creatorSignup(w http.ResponseWriter, r *http.Request) {
	var req service.SignupRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.authService.CreatorSignup(r.Context(), req)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	h.cookies.Set(w, security.KindCreator, resp.Token, h.tokens.TTL(security.KindCreator))
	common.RespondWithJSON(w, http.StatusCreated, resp)
}

func (h *AuthHandler) creatorLogin(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.authService.CreatorLogin(r.Context(), req)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	h.cookies.Set(w, security.KindCreator, resp.Token, h.tokens.TTL(security.KindCreator))
	common.RespondWithJSON(w, http.StatusOK, resp)
}

// logout only clears the cookie; tokens are stateless and nothing is persisted.
func (h *AuthHandler) logout(kind security.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.cookies.Clear(w, kind)
		common.RespondWithJSON(w, http.StatusOK, MessageResponse{Message: "logged out"})
	}
}

func (h *AuthHandler) adminMe(w http.ResponseWriter, r *http.Request) {
	admin, ok := adminFrom(w, r)
	if !ok {
		return
	}
	me, err := h.authService.AdminMe(r.Context(), admin.ID)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, me)
}
