package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"showcase/internal/common"
	"showcase/internal/domain/model"
)

type CreatorRepository interface {
	Create(ctx context.Context, creator *model.Creator) error
	FindByEmail(ctx context.Context, email string) (*model.Creator, error)
	FindByID(ctx context.Context, id string) (*model.Creator, error)
	UpdateProfile(ctx context.Context, creator *model.Creator) error
	SetTermsAccepted(ctx context.Context, id string, at time.Time) error
	ListPublic(ctx context.Context, limit, offset int) ([]model.Creator, int, error)
}

type pgCreatorRepository struct {
	db *sql.DB
}

func NewPgCreatorRepository(db *sql.DB) CreatorRepository {
	return &pgCreatorRepository{db: db}
}

const creatorColumns = `id, email, password_hash, display_name, bio, avatar_url, social_links,
	terms_accepted_at, created_at, updated_at`

func (r *pgCreatorRepository) Create(ctx context.Context, c *model.Creator) error {
	links, err := model.MarshalSocialLinks(c.SocialLinks)
	if err != nil {
		return fmt.Errorf("pgCreatorRepository.Create: %w", err)
	}
	query := `INSERT INTO creators (id, email, password_hash, display_name, bio, avatar_url, social_links)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err = r.db.ExecContext(ctx, query, c.ID, c.Email, c.PasswordHash, c.DisplayName, c.Bio, c.AvatarURL, links)
	if err != nil {
		if common.IsUniqueViolation(err) {
			return fmt.Errorf("creator with given email already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgCreatorRepository.Create: %w", err)
	}
	return nil
}

func (r *pgCreatorRepository) FindByEmail(ctx context.Context, email string) (*model.Creator, error) {
	query := `SELECT ` + creatorColumns + ` FROM creators WHERE lower(email) = lower($1)`
	return r.findOne(ctx, "FindByEmail", query, email)
}

func (r *pgCreatorRepository) FindByID(ctx context.Context, id string) (*model.Creator, error) {
	query := `SELECT ` + creatorColumns + ` FROM creators WHERE id = $1`
	return r.findOne(ctx, "FindByID", query, id)
}

func (r *pgCreatorRepository) findOne(ctx context.Context, op, query, arg string) (*model.Creator, error) {
	c, err := scanCreator(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgCreatorRepository.%s: %w", op, err)
	}
	return c, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCreator(row rowScanner) (*model.Creator, error) {
	c := &model.Creator{}
	var links []byte
	err := row.Scan(
		&c.ID, &c.Email, &c.PasswordHash, &c.DisplayName, &c.Bio, &c.AvatarURL, &links,
		&c.TermsAcceptedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(links) > 0 {
		if err := json.Unmarshal(links, &c.SocialLinks); err != nil {
			return nil, fmt.Errorf("decode social_links: %w", err)
		}
	}
	if c.SocialLinks == nil {
		c.SocialLinks = model.SocialLinks{}
	}
	return c, nil
}

func (r *pgCreatorRepository) UpdateProfile(ctx context.Context, c *model.Creator) error {
	links, err := model.MarshalSocialLinks(c.SocialLinks)
	if err != nil {
		return fmt.Errorf("pgCreatorRepository.UpdateProfile: %w", err)
	}
	query := `UPDATE creators SET display_name = $1, bio = $2, avatar_url = $3, social_links = $4,
	          updated_at = CURRENT_TIMESTAMP
	          WHERE id = $5`
	res, err := r.db.ExecContext(ctx, query, c.DisplayName, c.Bio, c.AvatarURL, links, c.ID)
	if err != nil {
		return fmt.Errorf("pgCreatorRepository.UpdateProfile: %w", err)
	}
	return expectOneRow(res, "pgCreatorRepository.UpdateProfile")
}

func (r *pgCreatorRepository) SetTermsAccepted(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE creators SET terms_accepted_at = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, at, id)
	if err != nil {
		return fmt.Errorf("pgCreatorRepository.SetTermsAccepted: %w", err)
	}
	return expectOneRow(res, "pgCreatorRepository.SetTermsAccepted")
}

// ListPublic returns creators with at least one published project.
func (r *pgCreatorRepository) ListPublic(ctx context.Context, limit, offset int) ([]model.Creator, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM creators c
	               WHERE EXISTS (SELECT 1 FROM projects p WHERE p.creator_id = c.id AND p.status = 'published')`
	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgCreatorRepository.ListPublic count: %w", err)
	}

	query := `SELECT ` + creatorColumns + ` FROM creators c
	          WHERE EXISTS (SELECT 1 FROM projects p WHERE p.creator_id = c.id AND p.status = 'published')
	          ORDER BY c.display_name
	          LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("pgCreatorRepository.ListPublic: %w", err)
	}
	defer rows.Close()

	var creators []model.Creator
	for rows.Next() {
		c, err := scanCreator(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("pgCreatorRepository.ListPublic scan: %w", err)
		}
		creators = append(creators, c.Public())
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("pgCreatorRepository.ListPublic rows: %w", err)
	}
	return creators, total, nil
}
