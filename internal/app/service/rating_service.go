package service

import (
	"context"
	"fmt"
	"log/slog"

	"showcase/internal/app/guard"
	"showcase/internal/domain/model"
	"showcase/internal/domain/repository"
)

type RatingService struct {
	ratingRepo repository.RatingRepository
	guard      *guard.RatingGuard
}

func NewRatingService(ratingRepo repository.RatingRepository, g *guard.RatingGuard) *RatingService {
	return &RatingService{ratingRepo: ratingRepo, guard: g}
}

// Submit records an anonymous rating from addr, at most once per day.
func (s *RatingService) Submit(ctx context.Context, addr string, in guard.RatingInput) (*model.Rating, error) {
	rating, err := s.guard.CheckAndRecord(ctx, addr, in)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "rating recorded", "rating_id", rating.ID, "rating", rating.Rating)
	return rating, nil
}

func (s *RatingService) List(ctx context.Context, page, pageSize int) ([]model.Rating, int, error) {
	limit, offset := pageBounds(page, pageSize)
	ratings, total, err := s.ratingRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list ratings: %w", err)
	}
	return ratings, total, nil
}

func (s *RatingService) Summary(ctx context.Context) (*model.RatingSummary, error) {
	summary, err := s.ratingRepo.Summary(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize ratings: %w", err)
	}
	return summary, nil
}

func (s *RatingService) Delete(ctx context.Context, id string) error {
	if err := s.ratingRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete rating: %w", err)
	}
	return nil
}
