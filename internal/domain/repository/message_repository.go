package repository

import (
	"context"
	"database/sql"
	"fmt"

	"showcase/internal/domain/model"
)

type MessageRepository interface {
	Create(ctx context.Context, msg *model.Message) error
	ListForCreator(ctx context.Context, creatorID string, limit, offset int) ([]model.Message, int, error)
	List(ctx context.Context, limit, offset int) ([]model.Message, int, error)
	MarkRead(ctx context.Context, id, creatorID string) error
	Delete(ctx context.Context, id string) error
}

type pgMessageRepository struct {
	db *sql.DB
}

func NewPgMessageRepository(db *sql.DB) MessageRepository {
	return &pgMessageRepository{db: db}
}

const messageSelect = `
	SELECT m.id, m.project_id, m.creator_id, m.sender_name, m.sender_email, m.body, m.read, m.created_at,
	       p.title AS project_title
	FROM messages m
	LEFT JOIN projects p ON p.id = m.project_id`

func (r *pgMessageRepository) Create(ctx context.Context, m *model.Message) error {
	query := `INSERT INTO messages (id, project_id, creator_id, sender_name, sender_email, body)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING created_at`
	err := r.db.QueryRowContext(ctx, query, m.ID, m.ProjectID, m.CreatorID, m.SenderName, m.SenderEmail, m.Body).Scan(&m.CreatedAt)
	if err != nil {
		return fmt.Errorf("pgMessageRepository.Create: %w", err)
	}
	return nil
}

func (r *pgMessageRepository) ListForCreator(ctx context.Context, creatorID string, limit, offset int) ([]model.Message, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages WHERE creator_id = $1`, creatorID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgMessageRepository.ListForCreator count: %w", err)
	}
	msgs, err := r.queryMany(ctx, "ListForCreator",
		messageSelect+` WHERE m.creator_id = $1 ORDER BY m.created_at DESC LIMIT $2 OFFSET $3`,
		creatorID, limit, offset)
	return msgs, total, err
}

func (r *pgMessageRepository) List(ctx context.Context, limit, offset int) ([]model.Message, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgMessageRepository.List count: %w", err)
	}
	msgs, err := r.queryMany(ctx, "List",
		messageSelect+` ORDER BY m.created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	return msgs, total, err
}

func (r *pgMessageRepository) queryMany(ctx context.Context, op, query string, args ...interface{}) ([]model.Message, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgMessageRepository.%s: %w", op, err)
	}
	defer rows.Close()

	msgs := []model.Message{}
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.ProjectID, &m.CreatorID, &m.SenderName, &m.SenderEmail, &m.Body, &m.Read, &m.CreatedAt, &m.ProjectTitle); err != nil {
			return nil, fmt.Errorf("pgMessageRepository.%s scan: %w", op, err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgMessageRepository.%s rows: %w", op, err)
	}
	return msgs, nil
}

// MarkRead only touches messages addressed to creatorID; anything else is ErrNotFound.
func (r *pgMessageRepository) MarkRead(ctx context.Context, id, creatorID string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE messages SET read = TRUE WHERE id = $1 AND creator_id = $2`, id, creatorID)
	if err != nil {
		return fmt.Errorf("pgMessageRepository.MarkRead: %w", err)
	}
	return expectOneRow(res, "pgMessageRepository.MarkRead")
}

func (r *pgMessageRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgMessageRepository.Delete: %w", err)
	}
	return expectOneRow(res, "pgMessageRepository.Delete")
}
