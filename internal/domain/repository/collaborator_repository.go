package repository

import (
	"context"
	"database/sql"
	"fmt"

	"showcase/internal/common"
	"showcase/internal/domain/model"
)

type CollaboratorRepository interface {
	Add(ctx context.Context, tx *sql.Tx, projectID, creatorID string) error
	Remove(ctx context.Context, tx *sql.Tx, projectID, creatorID string) error
	IsCollaborator(ctx context.Context, projectID, creatorID string) (bool, error)
	ListByProject(ctx context.Context, projectID string) ([]model.Collaborator, error)
}

type pgCollaboratorRepository struct {
	db *sql.DB
}

func NewPgCollaboratorRepository(db *sql.DB) CollaboratorRepository {
	return &pgCollaboratorRepository{db: db}
}

func (r *pgCollaboratorRepository) Add(ctx context.Context, tx *sql.Tx, projectID, creatorID string) error {
	query := `INSERT INTO collaborators (project_id, creator_id) VALUES ($1, $2)`
	if _, err := conn(r.db, tx).ExecContext(ctx, query, projectID, creatorID); err != nil {
		if common.IsUniqueViolation(err) {
			return fmt.Errorf("creator is already a collaborator: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgCollaboratorRepository.Add: %w", err)
	}
	return nil
}

func (r *pgCollaboratorRepository) Remove(ctx context.Context, tx *sql.Tx, projectID, creatorID string) error {
	query := `DELETE FROM collaborators WHERE project_id = $1 AND creator_id = $2`
	res, err := conn(r.db, tx).ExecContext(ctx, query, projectID, creatorID)
	if err != nil {
		return fmt.Errorf("pgCollaboratorRepository.Remove: %w", err)
	}
	return expectOneRow(res, "pgCollaboratorRepository.Remove")
}

func (r *pgCollaboratorRepository) IsCollaborator(ctx context.Context, projectID, creatorID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM collaborators WHERE project_id = $1 AND creator_id = $2)`
	if err := r.db.QueryRowContext(ctx, query, projectID, creatorID).Scan(&exists); err != nil {
		return false, fmt.Errorf("pgCollaboratorRepository.IsCollaborator: %w", err)
	}
	return exists, nil
}

func (r *pgCollaboratorRepository) ListByProject(ctx context.Context, projectID string) ([]model.Collaborator, error) {
	query := `SELECT cl.project_id, cl.creator_id, c.display_name, cl.added_at
	          FROM collaborators cl
	          JOIN creators c ON c.id = cl.creator_id
	          WHERE cl.project_id = $1
	          ORDER BY cl.added_at`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("pgCollaboratorRepository.ListByProject: %w", err)
	}
	defer rows.Close()

	collaborators := []model.Collaborator{}
	for rows.Next() {
		var c model.Collaborator
		if err := rows.Scan(&c.ProjectID, &c.CreatorID, &c.DisplayName, &c.AddedAt); err != nil {
			return nil, fmt.Errorf("pgCollaboratorRepository.ListByProject scan: %w", err)
		}
		collaborators = append(collaborators, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgCollaboratorRepository.ListByProject rows: %w", err)
	}
	return collaborators, nil
}
