package handler

import (
	"net/http"

	"showcase/internal/app/service"
	"showcase/internal/common"
	"showcase/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type MessageHandler struct {
	messageService *service.MessageService
}

func NewMessageHandler(ms *service.MessageService) *MessageHandler {
	return &MessageHandler{messageService: ms}
}

// RegisterCreatorRoutes mounts the inbox under /creator/messages.
func (h *MessageHandler) RegisterCreatorRoutes(r chi.Router) {
	r.Get("/", h.inbox)
	r.Post("/{messageID}/read", h.markRead)
}

// RegisterAdminRoutes mounts under /admin/messages.
func (h *MessageHandler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/", h.adminList)
	r.Delete("/{messageID}", h.adminDelete)
}

// Send handles POST /projects/{projectSlug}/messages.
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req service.SendMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	msg, err := h.messageService.Send(r.Context(), chi.URLParam(r, "projectSlug"), req)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, msg)
}

func (h *MessageHandler) inbox(w http.ResponseWriter, r *http.Request) {
	creator, ok := creatorFrom(w, r)
	if !ok {
		return
	}
	page, pageSize := pagination(r)
	msgs, total, err := h.messageService.ListForCreator(r.Context(), creator.ID, page, pageSize)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, Paginated[model.Message]{Items: msgs, Total: total, Page: page, PageSize: pageSize})
}

func (h *MessageHandler) markRead(w http.ResponseWriter, r *http.Request) {
	creator, ok := creatorFrom(w, r)
	if !ok {
		return
	}
	if err := h.messageService.MarkRead(r.Context(), creator.ID, chi.URLParam(r, "messageID")); err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondNoContent(w)
}

func (h *MessageHandler) adminList(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)
	msgs, total, err := h.messageService.AdminList(r.Context(), page, pageSize)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, Paginated[model.Message]{Items: msgs, Total: total, Page: page, PageSize: pageSize})
}

func (h *MessageHandler) adminDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.messageService.AdminDelete(r.Context(), chi.URLParam(r, "messageID")); err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondNoContent(w)
}
