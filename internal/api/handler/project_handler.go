package handler

import (
	"net/http"
	"strconv"

	"showcase/internal/app/service"
	"showcase/internal/common"
	"showcase/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type ProjectHandler struct {
	projectService *service.ProjectService
}

func NewProjectHandler(ps *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: ps}
}

// RegisterRoutes mounts the public catalogue under /projects.
func (h *ProjectHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listPublished)          // GET /api/v1/projects?tag=go
	r.Get("/{projectSlug}", h.getBySlug) // GET /api/v1/projects/orbit
}

// RegisterCreatorRoutes mounts under /creator/projects.
func (h *ProjectHandler) RegisterCreatorRoutes(r chi.Router) {
	r.Get("/", h.listMine)
	r.Post("/", h.create)
	r.Route("/{projectID}", func(pr chi.Router) {
		pr.Put("/", h.update)
		pr.Delete("/", h.delete)
		pr.Get("/collaborators", h.listCollaborators)
		pr.Post("/collaborators", h.addCollaborator)
		pr.Delete("/collaborators/{creatorID}", h.removeCollaborator)
		pr.Post("/terms", h.acceptTerms)
		pr.Post("/transfer", h.transferOwnership)
	})
}

// RegisterAdminRoutes mounts under /admin/projects.
func (h *ProjectHandler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/", h.adminList)
	r.Patch("/{projectID}", h.adminUpdate)
	r.Delete("/{projectID}", h.adminDelete)
}

func (h *ProjectHandler) listPublished(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)
	projects, total, err := h.projectService.ListPublished(r.Context(), page, pageSize, r.URL.Query().Get("tag"))
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, Paginated[model.Project]{Items: projects, Total: total, Page: page, PageSize: pageSize})
}

func (h *ProjectHandler) getBySlug(w http.ResponseWriter, r *http.Request) {
	project, err := h.projectService.GetBySlug(r.Context(), chi.URLParam(r, "projectSlug"))
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) listMine(w http.ResponseWriter, r *http.Request) {
	creator, ok := creatorFrom(w, r)
	if !ok {
		return
	}
	projects, err := h.projectService.ListForCreator(r.Context(), creator.ID)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, projects)
}

func (h *ProjectHandler) create(w http.ResponseWriter, r *http.Request) {
	creator, ok := creatorFrom(w, r)
	if !ok {
		return
	}
	var req service.CreateProjectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	project, err := h.projectService.Create(r.Context(), creator.ID, req)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, project)
}

func (h *ProjectHandler) update(w http.ResponseWriter, r *http.Request) {
	creator, ok := creatorFrom(w, r)
	if !ok {
		return
	}
	var req service.UpdateProjectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	project, err := h.projectService.Update(r.Context(), creator, chi.URLParam(r, "projectID"), req)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) delete(w http.ResponseWriter, r *http.Request) {
	creator, ok := creatorFrom(w, r)
	if !ok {
		return
	}
	if err := h.projectService.Delete(r.Context(), creator, chi.URLParam(r, "projectID")); err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondNoContent(w)
}

func (h *ProjectHandler) listCollaborators(w http.ResponseWriter, r *http.Request) {
	creator, ok := creatorFrom(w, r)
	if !ok {
		return
	}
	collaborators, err := h.projectService.ListCollaborators(r.Context(), creator, chi.URLParam(r, "projectID"))
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, collaborators)
}

func (h *ProjectHandler) addCollaborator(w http.ResponseWriter, r *http.Request) {
	creator, ok := creatorFrom(w, r)
	if !ok {
		return
	}
	var req service.AddCollaboratorRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	collaborator, err := h.projectService.AddCollaborator(r.Context(), creator, chi.URLParam(r, "projectID"), req)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, collaborator)
}

func (h *ProjectHandler) removeCollaborator(w http.ResponseWriter, r *http.Request) {
	creator, ok := creatorFrom(w, r)
	if !ok {
		return
	}
	err := h.projectService.RemoveCollaborator(r.Context(), creator,
		chi.URLParam(r, "projectID"), chi.URLParam(r, "creatorID"))
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondNoContent(w)
}

func (h *ProjectHandler) acceptTerms(w http.ResponseWriter, r *http.Request) {
	creator, ok := creatorFrom(w, r)
	if !ok {
		return
	}
	project, err := h.projectService.AcceptTerms(r.Context(), creator, chi.URLParam(r, "projectID"))
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) transferOwnership(w http.ResponseWriter, r *http.Request) {
	creator, ok := creatorFrom(w, r)
	if !ok {
		return
	}
	var req service.TransferOwnershipRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	project, err := h.projectService.TransferOwnership(r.Context(), creator, chi.URLParam(r, "projectID"), req)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) adminList(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)
	var featured *bool
	if raw := r.URL.Query().Get("featured"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			common.RespondWithError(w, http.StatusBadRequest, "featured must be a boolean")
			return
		}
		featured = &v
	}
	status := model.ProjectStatus(r.URL.Query().Get("status"))

	projects, total, err := h.projectService.AdminList(r.Context(), page, pageSize, status, featured)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, Paginated[model.Project]{Items: projects, Total: total, Page: page, PageSize: pageSize})
}

func (h *ProjectHandler) adminUpdate(w http.ResponseWriter, r *http.Request) {
	var req service.AdminUpdateProjectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	project, err := h.projectService.AdminUpdate(r.Context(), chi.URLParam(r, "projectID"), req)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) adminDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.projectService.AdminDelete(r.Context(), chi.URLParam(r, "projectID")); err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondNoContent(w)
}
