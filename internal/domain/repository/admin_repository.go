package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"showcase/internal/common"
	"showcase/internal/domain/model"
)

type AdminRepository interface {
	Create(ctx context.Context, admin *model.Admin) error
	FindByEmail(ctx context.Context, email string) (*model.Admin, error)
	FindByID(ctx context.Context, id string) (*model.Admin, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

type pgAdminRepository struct {
	db *sql.DB
}

func NewPgAdminRepository(db *sql.DB) AdminRepository {
	return &pgAdminRepository{db: db}
}

func (r *pgAdminRepository) Create(ctx context.Context, admin *model.Admin) error {
	query := `INSERT INTO admins (id, email, password_hash, role)
	          VALUES ($1, $2, $3, $4)`
	_, err := r.db.ExecContext(ctx, query, admin.ID, admin.Email, admin.PasswordHash, admin.Role)
	if err != nil {
		if common.IsUniqueViolation(err) {
			return fmt.Errorf("admin with given email already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgAdminRepository.Create: %w", err)
	}
	return nil
}

func (r *pgAdminRepository) FindByEmail(ctx context.Context, email string) (*model.Admin, error) {
	query := `SELECT id, email, password_hash, role, created_at
	          FROM admins WHERE lower(email) = lower($1)`
	return r.findOne(ctx, "FindByEmail", query, email)
}

func (r *pgAdminRepository) FindByID(ctx context.Context, id string) (*model.Admin, error) {
	query := `SELECT id, email, password_hash, role, created_at
	          FROM admins WHERE id = $1`
	return r.findOne(ctx, "FindByID", query, id)
}

func (r *pgAdminRepository) findOne(ctx context.Context, op, query string, arg string) (*model.Admin, error) {
	admin := &model.Admin{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&admin.ID, &admin.Email, &admin.PasswordHash, &admin.Role, &admin.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgAdminRepository.%s: %w", op, err)
	}
	return admin, nil
}

func (r *pgAdminRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE admins SET password_hash = $1 WHERE id = $2`, passwordHash, id)
	if err != nil {
		return fmt.Errorf("pgAdminRepository.UpdatePassword: %w", err)
	}
	return expectOneRow(res, "pgAdminRepository.UpdatePassword")
}

// expectOneRow turns "0 rows affected" into ErrNotFound.
func expectOneRow(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
