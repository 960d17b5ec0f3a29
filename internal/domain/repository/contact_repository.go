package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"showcase/internal/common"
	"showcase/internal/domain/model"
)

type ContactRepository interface {
	Create(ctx context.Context, contact *model.Contact) error
	FindByID(ctx context.Context, id string) (*model.Contact, error)
	List(ctx context.Context, status model.ContactStatus, limit, offset int) ([]model.Contact, int, error)
	SetStatus(ctx context.Context, id string, status model.ContactStatus) error
	Delete(ctx context.Context, id string) error
}

type pgContactRepository struct {
	db *sql.DB
}

func NewPgContactRepository(db *sql.DB) ContactRepository {
	return &pgContactRepository{db: db}
}

func (r *pgContactRepository) Create(ctx context.Context, c *model.Contact) error {
	query := `INSERT INTO contacts (id, name, email, subject, message, status)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING created_at`
	if err := r.db.QueryRowContext(ctx, query, c.ID, c.Name, c.Email, c.Subject, c.Message, c.Status).Scan(&c.CreatedAt); err != nil {
		return fmt.Errorf("pgContactRepository.Create: %w", err)
	}
	return nil
}

func (r *pgContactRepository) FindByID(ctx context.Context, id string) (*model.Contact, error) {
	query := `SELECT id, name, email, subject, message, status, created_at FROM contacts WHERE id = $1`
	c := &model.Contact{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.Email, &c.Subject, &c.Message, &c.Status, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgContactRepository.FindByID: %w", err)
	}
	return c, nil
}

func (r *pgContactRepository) List(ctx context.Context, status model.ContactStatus, limit, offset int) ([]model.Contact, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM contacts WHERE ($1 = '' OR status = $1)`, status,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgContactRepository.List count: %w", err)
	}

	query := `SELECT id, name, email, subject, message, status, created_at FROM contacts
	          WHERE ($1 = '' OR status = $1)
	          ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, status, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("pgContactRepository.List: %w", err)
	}
	defer rows.Close()

	contacts := []model.Contact{}
	for rows.Next() {
		var c model.Contact
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Subject, &c.Message, &c.Status, &c.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("pgContactRepository.List scan: %w", err)
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("pgContactRepository.List rows: %w", err)
	}
	return contacts, total, nil
}

func (r *pgContactRepository) SetStatus(ctx context.Context, id string, status model.ContactStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE contacts SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("pgContactRepository.SetStatus: %w", err)
	}
	return expectOneRow(res, "pgContactRepository.SetStatus")
}

func (r *pgContactRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgContactRepository.Delete: %w", err)
	}
	return expectOneRow(res, "pgContactRepository.Delete")
}
