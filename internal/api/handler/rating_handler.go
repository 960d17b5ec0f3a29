package handler

import (
	"net/http"

	"showcase/internal/app/guard"
	"showcase/internal/app/service"
	"showcase/internal/common"
	"showcase/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type RatingHandler struct {
	ratingService *service.RatingService
}

func NewRatingHandler(rs *service.RatingService) *RatingHandler {
	return &RatingHandler{ratingService: rs}
}

// RegisterRoutes mounts the public submission endpoint under /ratings.
func (h *RatingHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.submit)
}

// RegisterAdminRoutes mounts under /admin/ratings.
func (h *RatingHandler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/summary", h.summary)
	r.Delete("/{ratingID}", h.delete)
}

func (h *RatingHandler) submit(w http.ResponseWriter, r *http.Request) {
	var in guard.RatingInput
	if !decodeJSON(w, r, &in) {
		return
	}
	rating, err := h.ratingService.Submit(r.Context(), guard.ClientAddress(r), in)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, rating)
}

func (h *RatingHandler) list(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)
	ratings, total, err := h.ratingService.List(r.Context(), page, pageSize)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, Paginated[model.Rating]{Items: ratings, Total: total, Page: page, PageSize: pageSize})
}

func (h *RatingHandler) summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.ratingService.Summary(r.Context())
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, summary)
}

func (h *RatingHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.ratingService.Delete(r.Context(), chi.URLParam(r, "ratingID")); err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondNoContent(w)
}
