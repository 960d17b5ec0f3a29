package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"showcase/internal/app/access"
	"showcase/internal/common"
	"showcase/internal/common/security"
	"showcase/internal/domain/model"
	"showcase/internal/domain/repository"
	"showcase/internal/platform/database"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

const (
	maxTags          = 10
	maxTagLength     = 32
	slugAttempts     = 4
	fallbackSlugBase = "project"
)

type ProjectService struct {
	projectRepo      repository.ProjectRepository
	collaboratorRepo repository.CollaboratorRepository
	creatorRepo      repository.CreatorRepository
	engine           *access.Engine
	db               *sql.DB // For transactions
	now              func() time.Time
}

func NewProjectService(
	projectRepo repository.ProjectRepository,
	collaboratorRepo repository.CollaboratorRepository,
	creatorRepo repository.CreatorRepository,
	engine *access.Engine,
	db *sql.DB,
) *ProjectService {
	return &ProjectService{
		projectRepo:      projectRepo,
		collaboratorRepo: collaboratorRepo,
		creatorRepo:      creatorRepo,
		engine:           engine,
		db:               db,
		now:              time.Now,
	}
}

type CreateProjectRequest struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	ProjectURL  string              `json:"project_url"`
	RepoURL     string              `json:"repo_url"`
	Tags        []string            `json:"tags"`
	Status      model.ProjectStatus `json:"status"` // draft (default) or published
}

type UpdateProjectRequest struct {
	Title       *string              `json:"title,omitempty"`
	Description *string              `json:"description,omitempty"`
	ProjectURL  *string              `json:"project_url,omitempty"`
	RepoURL     *string              `json:"repo_url,omitempty"`
	Tags        *[]string            `json:"tags,omitempty"`
	Status      *model.ProjectStatus `json:"status,omitempty"`
}

type AddCollaboratorRequest struct {
	CreatorID string `json:"creator_id,omitempty"`
	Email     string `json:"email,omitempty"` // Alternative to CreatorID
}

type TransferOwnershipRequest struct {
	CreatorID string `json:"creator_id"`
}

type AdminUpdateProjectRequest struct {
	Status   *model.ProjectStatus `json:"status,omitempty"`
	Featured *bool                `json:"featured,omitempty"`
}

// ListPublished is the public catalogue: published projects only, featured first.
func (s *ProjectService) ListPublished(ctx context.Context, page, pageSize int, tag string) ([]model.Project, int, error) {
	limit, offset := pageBounds(page, pageSize)
	filter := repository.ProjectFilter{Status: model.ProjectPublished, Tag: strings.ToLower(strings.TrimSpace(tag))}
	projects, total, err := s.projectRepo.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, total, nil
}

// GetBySlug hides unpublished projects behind ErrNotFound.
func (s *ProjectService) GetBySlug(ctx context.Context, projectSlug string) (*model.Project, error) {
	project, err := s.projectRepo.FindBySlug(ctx, projectSlug)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	if project.Status != model.ProjectPublished {
		return nil, common.ErrNotFound
	}
	return project, nil
}

func (s *ProjectService) ListForCreator(ctx context.Context, creatorID string) ([]model.Project, error) {
	projects, err := s.projectRepo.ListForCreator(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list creator projects: %w", err)
	}
	return projects, nil
}

func (s *ProjectService) Create(ctx context.Context, creatorID string, req CreateProjectRequest) (*model.Project, error) {
	title := strings.TrimSpace(req.Title)
	if err := requireText("title", title, maxTitleLength); err != nil {
		return nil, err
	}
	if err := validateProjectFields(req.Description, req.ProjectURL, req.RepoURL); err != nil {
		return nil, err
	}
	tags, err := normalizeTags(req.Tags)
	if err != nil {
		return nil, err
	}
	status := req.Status
	if status == "" {
		status = model.ProjectDraft
	}
	if err := validateCreatorStatus(status); err != nil {
		return nil, err
	}

	project := &model.Project{
		CreatorID:   creatorID,
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		ProjectURL:  strings.TrimSpace(req.ProjectURL),
		RepoURL:     strings.TrimSpace(req.RepoURL),
		Tags:        tags,
		Status:      status,
	}

	base := slug.Make(title)
	if base == "" {
		base = fallbackSlugBase
	}
	for attempt := 0; attempt < slugAttempts; attempt++ {
		project.ID = uuid.NewString()
		project.Slug = base
		if attempt > 0 {
			project.Slug = base + "-" + project.ID[:8]
		}
		err = s.projectRepo.Create(ctx, project)
		if !errors.Is(err, common.ErrConflict) {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	slog.InfoContext(ctx, "project created", "project_id", project.ID, "creator_id", creatorID, "slug", project.Slug)

	return s.reload(ctx, project.ID)
}

func (s *ProjectService) Update(ctx context.Context, p security.Principal, projectID string, req UpdateProjectRequest) (*model.Project, error) {
	project, err := s.engine.Authorize(ctx, p, projectID, access.CapEdit)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if err := requireText("title", title, maxTitleLength); err != nil {
			return nil, err
		}
		project.Title = title
	}
	if req.Description != nil {
		project.Description = strings.TrimSpace(*req.Description)
	}
	if req.ProjectURL != nil {
		project.ProjectURL = strings.TrimSpace(*req.ProjectURL)
	}
	if req.RepoURL != nil {
		project.RepoURL = strings.TrimSpace(*req.RepoURL)
	}
	if err := validateProjectFields(project.Description, project.ProjectURL, project.RepoURL); err != nil {
		return nil, err
	}
	if req.Tags != nil {
		tags, err := normalizeTags(*req.Tags)
		if err != nil {
			return nil, err
		}
		project.Tags = tags
	}
	if req.Status != nil && *req.Status != project.Status {
		if project.Status == model.ProjectHidden {
			return nil, fmt.Errorf("project was hidden by a moderator: %w", common.ErrForbidden)
		}
		if err := validateCreatorStatus(*req.Status); err != nil {
			return nil, err
		}
		project.Status = *req.Status
	}

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	return s.reload(ctx, project.ID)
}

func (s *ProjectService) Delete(ctx context.Context, p security.Principal, projectID string) error {
	if _, err := s.engine.Authorize(ctx, p, projectID, access.CapDelete); err != nil {
		return err
	}
	if err := s.projectRepo.Delete(ctx, projectID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	slog.InfoContext(ctx, "project deleted", "project_id", projectID)
	return nil
}

func (s *ProjectService) ListCollaborators(ctx context.Context, p security.Principal, projectID string) ([]model.Collaborator, error) {
	if _, err := s.engine.Authorize(ctx, p, projectID, access.CapView); err != nil {
		return nil, err
	}
	collaborators, err := s.collaboratorRepo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list collaborators: %w", err)
	}
	return collaborators, nil
}

// AddCollaborator grants edit access to another creator. The primary owner can
// never be added as a collaborator of their own project.
func (s *ProjectService) AddCollaborator(ctx context.Context, p security.Principal, projectID string, req AddCollaboratorRequest) (*model.Collaborator, error) {
	project, err := s.engine.Authorize(ctx, p, projectID, access.CapManageCollaborators)
	if err != nil {
		return nil, err
	}

	target, err := s.findCreator(ctx, req)
	if err != nil {
		return nil, err
	}
	if target.ID == project.CreatorID {
		return nil, common.Validationf("the primary owner cannot be added as a collaborator")
	}

	if err := s.collaboratorRepo.Add(ctx, nil, projectID, target.ID); err != nil {
		return nil, fmt.Errorf("failed to add collaborator: %w", err)
	}
	slog.InfoContext(ctx, "collaborator added", "project_id", projectID, "creator_id", target.ID)

	return &model.Collaborator{
		ProjectID:   projectID,
		CreatorID:   target.ID,
		DisplayName: target.DisplayName,
		AddedAt:     s.now().UTC(),
	}, nil
}

func (s *ProjectService) findCreator(ctx context.Context, req AddCollaboratorRequest) (*model.Creator, error) {
	var (
		creator *model.Creator
		err     error
	)
	switch {
	case strings.TrimSpace(req.CreatorID) != "":
		creator, err = s.creatorRepo.FindByID(ctx, strings.TrimSpace(req.CreatorID))
	case strings.TrimSpace(req.Email) != "":
		creator, err = s.creatorRepo.FindByEmail(ctx, normalizeEmail(req.Email))
	default:
		return nil, common.Validationf("creator_id or email is required")
	}
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.Validationf("creator does not exist")
		}
		return nil, fmt.Errorf("failed to find creator: %w", err)
	}
	return creator, nil
}

// RemoveCollaborator revokes a collaborator. The primary owner is not a
// collaborator and is only replaced through TransferOwnership.
func (s *ProjectService) RemoveCollaborator(ctx context.Context, p security.Principal, projectID, creatorID string) error {
	project, err := s.engine.Authorize(ctx, p, projectID, access.CapManageCollaborators)
	if err != nil {
		return err
	}
	if creatorID == project.CreatorID {
		return common.Validationf("the primary owner cannot be removed; transfer ownership instead")
	}
	if err := s.collaboratorRepo.Remove(ctx, nil, projectID, creatorID); err != nil {
		return fmt.Errorf("failed to remove collaborator: %w", err)
	}
	slog.InfoContext(ctx, "collaborator removed", "project_id", projectID, "creator_id", creatorID)
	return nil
}

func (s *ProjectService) AcceptTerms(ctx context.Context, p security.Principal, projectID string) (*model.Project, error) {
	if _, err := s.engine.Authorize(ctx, p, projectID, access.CapAcceptTerms); err != nil {
		return nil, err
	}
	if err := s.projectRepo.SetTermsAccepted(ctx, projectID, s.now().UTC()); err != nil {
		return nil, fmt.Errorf("failed to accept terms: %w", err)
	}
	return s.reload(ctx, projectID)
}

// TransferOwnership hands the project to one of its collaborators. The
// previous owner stays on as a collaborator. All three writes share one
// transaction.
func (s *ProjectService) TransferOwnership(ctx context.Context, p security.Principal, projectID string, req TransferOwnershipRequest) (*model.Project, error) {
	project, err := s.engine.Authorize(ctx, p, projectID, access.CapTransferOwnership)
	if err != nil {
		return nil, err
	}
	newOwner := strings.TrimSpace(req.CreatorID)
	if newOwner == "" {
		return nil, common.Validationf("creator_id is required")
	}
	if newOwner == project.CreatorID {
		return nil, common.Validationf("creator already owns this project")
	}

	member, err := s.collaboratorRepo.IsCollaborator(ctx, projectID, newOwner)
	if err != nil {
		return nil, fmt.Errorf("failed to check collaborator: %w", err)
	}
	if !member {
		return nil, common.Validationf("ownership can only be transferred to a collaborator")
	}

	previousOwner := project.CreatorID
	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.projectRepo.SetOwner(ctx, tx, projectID, newOwner); err != nil {
			return err
		}
		if err := s.collaboratorRepo.Remove(ctx, tx, projectID, newOwner); err != nil {
			return err
		}
		return s.collaboratorRepo.Add(ctx, tx, projectID, previousOwner)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to transfer ownership: %w", err)
	}
	slog.InfoContext(ctx, "project ownership transferred",
		"project_id", projectID, "from", previousOwner, "to", newOwner)

	return s.reload(ctx, projectID)
}

func (s *ProjectService) AdminList(ctx context.Context, page, pageSize int, status model.ProjectStatus, featured *bool) ([]model.Project, int, error) {
	if status != "" && !status.Valid() {
		return nil, 0, common.Validationf("unknown project status %q", status)
	}
	limit, offset := pageBounds(page, pageSize)
	projects, total, err := s.projectRepo.List(ctx, repository.ProjectFilter{Status: status, Featured: featured}, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, total, nil
}

// AdminUpdate applies moderation changes. At least one field must be set.
func (s *ProjectService) AdminUpdate(ctx context.Context, projectID string, req AdminUpdateProjectRequest) (*model.Project, error) {
	if req.Status == nil && req.Featured == nil {
		return nil, common.Validationf("status or featured is required")
	}
	if req.Status != nil {
		if err := s.AdminSetStatus(ctx, projectID, *req.Status); err != nil {
			return nil, err
		}
	}
	if req.Featured != nil {
		if err := s.AdminSetFeatured(ctx, projectID, *req.Featured); err != nil {
			return nil, err
		}
	}
	return s.reload(ctx, projectID)
}

func (s *ProjectService) AdminSetStatus(ctx context.Context, projectID string, status model.ProjectStatus) error {
	if !status.Valid() {
		return common.Validationf("unknown project status %q", status)
	}
	if err := s.projectRepo.SetStatus(ctx, projectID, status); err != nil {
		return fmt.Errorf("failed to set project status: %w", err)
	}
	slog.InfoContext(ctx, "project status changed", "project_id", projectID, "status", status)
	return nil
}

func (s *ProjectService) AdminSetFeatured(ctx context.Context, projectID string, featured bool) error {
	if err := s.projectRepo.SetFeatured(ctx, projectID, featured); err != nil {
		return fmt.Errorf("failed to set project featured: %w", err)
	}
	return nil
}

func (s *ProjectService) AdminDelete(ctx context.Context, projectID string) error {
	if err := s.projectRepo.Delete(ctx, projectID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	slog.InfoContext(ctx, "project deleted by admin", "project_id", projectID)
	return nil
}

func (s *ProjectService) reload(ctx context.Context, projectID string) (*model.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload project: %w", err)
	}
	return project, nil
}

func validateProjectFields(description, projectURL, repoURL string) error {
	if err := limitText("description", description, maxTextLength); err != nil {
		return err
	}
	if err := validateHTTPURL("project_url", strings.TrimSpace(projectURL)); err != nil {
		return err
	}
	return validateHTTPURL("repo_url", strings.TrimSpace(repoURL))
}

// Creators may publish or unpublish; hiding is reserved for moderators.
func validateCreatorStatus(status model.ProjectStatus) error {
	if status != model.ProjectDraft && status != model.ProjectPublished {
		return common.Validationf("status must be %q or %q", model.ProjectDraft, model.ProjectPublished)
	}
	return nil
}

// normalizeTags lowercases, trims and de-duplicates tags, keeping order.
func normalizeTags(in []string) ([]string, error) {
	tags := []string{}
	seen := map[string]bool{}
	for _, tag := range in {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || seen[tag] {
			continue
		}
		if len(tag) > maxTagLength {
			return nil, common.Validationf("tag %q is longer than %d characters", tag, maxTagLength)
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	if len(tags) > maxTags {
		return nil, common.Validationf("at most %d tags are allowed", maxTags)
	}
	return tags, nil
}
