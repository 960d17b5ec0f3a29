package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"showcase/internal/common"
	"showcase/internal/domain/model"
)

type ProjectFilter struct {
	Status   model.ProjectStatus // Empty means any status
	Tag      string
	Featured *bool
}

type ProjectRepository interface {
	Create(ctx context.Context, project *model.Project) error
	Update(ctx context.Context, project *model.Project) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*model.Project, error)
	FindBySlug(ctx context.Context, slug string) (*model.Project, error)
	List(ctx context.Context, filter ProjectFilter, limit, offset int) ([]model.Project, int, error)
	ListForCreator(ctx context.Context, creatorID string) ([]model.Project, error)
	SetStatus(ctx context.Context, id string, status model.ProjectStatus) error
	SetFeatured(ctx context.Context, id string, featured bool) error
	SetTermsAccepted(ctx context.Context, id string, at time.Time) error
	SetOwner(ctx context.Context, tx *sql.Tx, id, creatorID string) error
}

type pgProjectRepository struct {
	db *sql.DB
}

func NewPgProjectRepository(db *sql.DB) ProjectRepository {
	return &pgProjectRepository{db: db}
}

const projectSelect = `
	SELECT p.id, p.creator_id, p.title, p.slug, p.description, p.project_url, p.repo_url, p.tags,
	       p.status, p.featured, p.terms_accepted_at, p.created_at, p.updated_at,
	       c.display_name AS creator_name
	FROM projects p
	LEFT JOIN creators c ON c.id = p.creator_id`

func scanProject(row rowScanner) (*model.Project, error) {
	p := &model.Project{}
	err := row.Scan(
		&p.ID, &p.CreatorID, &p.Title, &p.Slug, &p.Description, &p.ProjectURL, &p.RepoURL,
		arrayScanner(&p.Tags),
		&p.Status, &p.Featured, &p.TermsAcceptedAt, &p.CreatedAt, &p.UpdatedAt,
		&p.CreatorName,
	)
	if err != nil {
		return nil, err
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return p, nil
}

func (r *pgProjectRepository) Create(ctx context.Context, p *model.Project) error {
	query := `INSERT INTO projects (id, creator_id, title, slug, description, project_url, repo_url, tags, status)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.CreatorID, p.Title, p.Slug, p.Description, p.ProjectURL, p.RepoURL, nonNilTags(p.Tags), p.Status,
	)
	if err != nil {
		if common.IsUniqueViolation(err) { // Unique constraint for slug
			return fmt.Errorf("project with this slug already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgProjectRepository.Create: %w", err)
	}
	return nil
}

func (r *pgProjectRepository) Update(ctx context.Context, p *model.Project) error {
	query := `UPDATE projects SET
	            title = $1, description = $2, project_url = $3, repo_url = $4, tags = $5, status = $6,
	            updated_at = CURRENT_TIMESTAMP
	          WHERE id = $7`
	res, err := r.db.ExecContext(ctx, query,
		p.Title, p.Description, p.ProjectURL, p.RepoURL, nonNilTags(p.Tags), p.Status, p.ID,
	)
	if err != nil {
		return fmt.Errorf("pgProjectRepository.Update: %w", err)
	}
	return expectOneRow(res, "pgProjectRepository.Update")
}

func (r *pgProjectRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgProjectRepository.Delete: %w", err)
	}
	return expectOneRow(res, "pgProjectRepository.Delete")
}

func (r *pgProjectRepository) FindByID(ctx context.Context, id string) (*model.Project, error) {
	return r.findOne(ctx, "FindByID", projectSelect+` WHERE p.id = $1`, id)
}

func (r *pgProjectRepository) FindBySlug(ctx context.Context, slug string) (*model.Project, error) {
	return r.findOne(ctx, "FindBySlug", projectSelect+` WHERE p.slug = $1`, slug)
}

func (r *pgProjectRepository) findOne(ctx context.Context, op, query, arg string) (*model.Project, error) {
	p, err := scanProject(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgProjectRepository.%s: %w", op, err)
	}
	return p, nil
}

func (r *pgProjectRepository) List(ctx context.Context, filter ProjectFilter, limit, offset int) ([]model.Project, int, error) {
	var conditions []string
	var args []interface{}
	argID := 1

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("p.status = $%d", argID))
		args = append(args, filter.Status)
		argID++
	}
	if filter.Tag != "" {
		conditions = append(conditions, fmt.Sprintf("$%d = ANY(p.tags)", argID))
		args = append(args, filter.Tag)
		argID++
	}
	if filter.Featured != nil {
		conditions = append(conditions, fmt.Sprintf("p.featured = $%d", argID))
		args = append(args, *filter.Featured)
		argID++
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects p`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgProjectRepository.List count: %w", err)
	}

	query := projectSelect + where +
		fmt.Sprintf(" ORDER BY p.featured DESC, p.created_at DESC LIMIT $%d OFFSET $%d", argID, argID+1)
	args = append(args, limit, offset)

	projects, err := r.queryMany(ctx, "List", query, args...)
	if err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

// ListForCreator returns owned projects followed by ones the creator collaborates on.
func (r *pgProjectRepository) ListForCreator(ctx context.Context, creatorID string) ([]model.Project, error) {
	query := projectSelect + `
	WHERE p.creator_id = $1
	   OR EXISTS (SELECT 1 FROM collaborators cl WHERE cl.project_id = p.id AND cl.creator_id = $1)
	ORDER BY (p.creator_id = $1) DESC, p.updated_at DESC`
	projects, err := r.queryMany(ctx, "ListForCreator", query, creatorID)
	if err != nil {
		return nil, err
	}
	for i := range projects {
		projects[i].Collaborating = projects[i].CreatorID != creatorID
	}
	return projects, nil
}

func (r *pgProjectRepository) queryMany(ctx context.Context, op, query string, args ...interface{}) ([]model.Project, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgProjectRepository.%s: %w", op, err)
	}
	defer rows.Close()

	projects := []model.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("pgProjectRepository.%s scan: %w", op, err)
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgProjectRepository.%s rows: %w", op, err)
	}
	return projects, nil
}

func (r *pgProjectRepository) SetStatus(ctx context.Context, id string, status model.ProjectStatus) error {
	return r.exec(ctx, nil, "SetStatus",
		`UPDATE projects SET status = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`, status, id)
}

func (r *pgProjectRepository) SetFeatured(ctx context.Context, id string, featured bool) error {
	return r.exec(ctx, nil, "SetFeatured",
		`UPDATE projects SET featured = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`, featured, id)
}

func (r *pgProjectRepository) SetTermsAccepted(ctx context.Context, id string, at time.Time) error {
	return r.exec(ctx, nil, "SetTermsAccepted",
		`UPDATE projects SET terms_accepted_at = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`, at, id)
}

func (r *pgProjectRepository) SetOwner(ctx context.Context, tx *sql.Tx, id, creatorID string) error {
	return r.exec(ctx, tx, "SetOwner",
		`UPDATE projects SET creator_id = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`, creatorID, id)
}

func (r *pgProjectRepository) exec(ctx context.Context, tx *sql.Tx, op, query string, args ...interface{}) error {
	res, err := conn(r.db, tx).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("pgProjectRepository.%s: %w", op, err)
	}
	return expectOneRow(res, "pgProjectRepository."+op)
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
