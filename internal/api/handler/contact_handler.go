package handler

import (
	"net/http"

	"showcase/internal/app/service"
	"showcase/internal/common"
	"showcase/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type ContactHandler struct {
	contactService *service.ContactService
}

func NewContactHandler(cs *service.ContactService) *ContactHandler {
	return &ContactHandler{contactService: cs}
}

// RegisterRoutes mounts the public form endpoint under /contacts.
func (h *ContactHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.submit)
}

// RegisterAdminRoutes mounts under /admin/contacts.
func (h *ContactHandler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Patch("/{contactID}", h.setStatus)
	r.Delete("/{contactID}", h.delete)
}

func (h *ContactHandler) submit(w http.ResponseWriter, r *http.Request) {
	var req service.ContactRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	contact, err := h.contactService.Submit(r.Context(), req)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, contact)
}

func (h *ContactHandler) list(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)
	status := model.ContactStatus(r.URL.Query().Get("status"))
	contacts, total, err := h.contactService.List(r.Context(), page, pageSize, status)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, Paginated[model.Contact]{Items: contacts, Total: total, Page: page, PageSize: pageSize})
}

func (h *ContactHandler) setStatus(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateContactRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	contact, err := h.contactService.SetStatus(r.Context(), chi.URLParam(r, "contactID"), req.Status)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, contact)
}

func (h *ContactHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.contactService.Delete(r.Context(), chi.URLParam(r, "contactID")); err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondNoContent(w)
}
