package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"showcase/internal/common"
	"showcase/internal/domain/model"
)

type RatingRepository interface {
	// Create fails with common.ErrConflict when (ip_hash, day_bucket) already exists.
	Create(ctx context.Context, rating *model.Rating) error
	ExistsSince(ctx context.Context, ipHash string, since time.Time) (bool, error)
	List(ctx context.Context, limit, offset int) ([]model.Rating, int, error)
	Summary(ctx context.Context) (*model.RatingSummary, error)
	Delete(ctx context.Context, id string) error
}

type pgRatingRepository struct {
	db *sql.DB
}

func NewPgRatingRepository(db *sql.DB) RatingRepository {
	return &pgRatingRepository{db: db}
}

func (r *pgRatingRepository) Create(ctx context.Context, rt *model.Rating) error {
	query := `INSERT INTO ratings (id, rating, feedback, ip_hash, day_bucket, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, query, rt.ID, rt.Rating, rt.Feedback, rt.IPHash, rt.DayBucket, rt.CreatedAt)
	if err != nil {
		if common.IsUniqueViolation(err) {
			return fmt.Errorf("rating already recorded for this day: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgRatingRepository.Create: %w", err)
	}
	return nil
}

func (r *pgRatingRepository) ExistsSince(ctx context.Context, ipHash string, since time.Time) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM ratings WHERE ip_hash = $1 AND created_at >= $2)`
	if err := r.db.QueryRowContext(ctx, query, ipHash, since).Scan(&exists); err != nil {
		return false, fmt.Errorf("pgRatingRepository.ExistsSince: %w", err)
	}
	return exists, nil
}

func (r *pgRatingRepository) List(ctx context.Context, limit, offset int) ([]model.Rating, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ratings`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgRatingRepository.List count: %w", err)
	}

	query := `SELECT id, rating, feedback, created_at FROM ratings
	          ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("pgRatingRepository.List: %w", err)
	}
	defer rows.Close()

	ratings := []model.Rating{}
	for rows.Next() {
		var rt model.Rating
		if err := rows.Scan(&rt.ID, &rt.Rating, &rt.Feedback, &rt.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("pgRatingRepository.List scan: %w", err)
		}
		ratings = append(ratings, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("pgRatingRepository.List rows: %w", err)
	}
	return ratings, total, nil
}

func (r *pgRatingRepository) Summary(ctx context.Context) (*model.RatingSummary, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT rating, COUNT(*) FROM ratings GROUP BY rating`)
	if err != nil {
		return nil, fmt.Errorf("pgRatingRepository.Summary: %w", err)
	}
	defer rows.Close()

	summary := &model.RatingSummary{Histogram: map[int]int{}}
	for v := model.MinRating; v <= model.MaxRating; v++ {
		summary.Histogram[v] = 0
	}
	sum := 0
	for rows.Next() {
		var value, count int
		if err := rows.Scan(&value, &count); err != nil {
			return nil, fmt.Errorf("pgRatingRepository.Summary scan: %w", err)
		}
		summary.Histogram[value] = count
		summary.Count += count
		sum += value * count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgRatingRepository.Summary rows: %w", err)
	}
	if summary.Count > 0 {
		summary.Average = float64(sum) / float64(summary.Count)
	}
	return summary, nil
}

func (r *pgRatingRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM ratings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgRatingRepository.Delete: %w", err)
	}
	return expectOneRow(res, "pgRatingRepository.Delete")
}
