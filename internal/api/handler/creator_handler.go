package handler

import (
	"net/http"

	"showcase/internal/app/service"
	"showcase/internal/common"
	"showcase/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type CreatorHandler struct {
	creatorService *service.CreatorService
}

func NewCreatorHandler(cs *service.CreatorService) *CreatorHandler {
	return &CreatorHandler{creatorService: cs}
}

// RegisterRoutes mounts the public directory under /creators.
func (h *CreatorHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listPublic)
	r.Get("/{creatorID}", h.getPublic)
}

// RegisterCreatorRoutes mounts under /creator/me.
func (h *CreatorHandler) RegisterCreatorRoutes(r chi.Router) {
	r.Get("/", h.me)
	r.Put("/", h.updateMe)
	r.Post("/terms", h.acceptTerms)
}

func (h *CreatorHandler) listPublic(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)
	creators, total, err := h.creatorService.ListPublic(r.Context(), page, pageSize)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, Paginated[model.Creator]{Items: creators, Total: total, Page: page, PageSize: pageSize})
}

func (h *CreatorHandler) getPublic(w http.ResponseWriter, r *http.Request) {
	creator, err := h.creatorService.GetPublic(r.Context(), chi.URLParam(r, "creatorID"))
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, creator)
}

func (h *CreatorHandler) me(w http.ResponseWriter, r *http.Request) {
	c, ok := creatorFrom(w, r)
	if !ok {
		return
	}
	creator, err := h.creatorService.GetProfile(r.Context(), c.ID)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, creator)
}

func (h *CreatorHandler) updateMe(w http.ResponseWriter, r *http.Request) {
	c, ok := creatorFrom(w, r)
	if !ok {
		return
	}
	var req service.UpdateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	creator, err := h.creatorService.UpdateProfile(r.Context(), c.ID, req)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, creator)
}

func (h *CreatorHandler) acceptTerms(w http.ResponseWriter, r *http.Request) {
	c, ok := creatorFrom(w, r)
	if !ok {
		return
	}
	creator, err := h.creatorService.AcceptTerms(r.Context(), c.ID)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, creator)
}
