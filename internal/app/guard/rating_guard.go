// Package guard enforces the one-rating-per-address-per-day rule for
// anonymous submissions.
package guard

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"showcase/internal/common"
	"showcase/internal/domain/model"

	"github.com/google/uuid"
)

// UnknownAddress is used when a request carries no address headers. All such
// clients share one daily bucket.
const UnknownAddress = "unknown"

const (
	MaxFeedbackLength = 2000
	dayBucketLayout   = "2006-01-02"
)

// Store is the persistence the guard needs. Create must fail with
// common.ErrConflict when (ip_hash, day_bucket) is already taken.
type Store interface {
	ExistsSince(ctx context.Context, ipHash string, since time.Time) (bool, error)
	Create(ctx context.Context, rating *model.Rating) error
}

// Locker serializes submissions per hashed address.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), ok bool, err error)
}

type RatingInput struct {
	Rating   int     `json:"rating"`
	Feedback *string `json:"feedback,omitempty"`
}

type RatingGuard struct {
	store   Store
	locker  Locker
	lockTTL time.Duration
	salt    []byte
	loc     *time.Location
	now     func() time.Time
}

type Option func(*RatingGuard)

// WithLocker adds a per-hash lock held for at most ttl around check and insert.
func WithLocker(l Locker, ttl time.Duration) Option {
	return func(g *RatingGuard) {
		g.locker = l
		g.lockTTL = ttl
	}
}

func WithClock(now func() time.Time) Option {
	return func(g *RatingGuard) { g.now = now }
}

// NewRatingGuard builds a guard whose calendar days start at midnight in loc.
// A nil loc means UTC.
func NewRatingGuard(store Store, salt string, loc *time.Location, opts ...Option) *RatingGuard {
	if loc == nil {
		loc = time.UTC
	}
	g := &RatingGuard{
		store:   store,
		salt:    []byte(salt),
		loc:     loc,
		lockTTL: 5 * time.Second,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// ClientAddress picks the first X-Forwarded-For entry, then X-Real-IP, then
// UnknownAddress. The transport peer address is deliberately not consulted.
func ClientAddress(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	return UnknownAddress
}

// HashAddress returns the hex HMAC-SHA256 of addr keyed by salt.
func HashAddress(addr string, salt []byte) string {
	h := hmac.New(sha256.New, salt)
	h.Write([]byte(addr))
	return hex.EncodeToString(h.Sum(nil))
}

// DayStart returns midnight of t's calendar day in loc.
func DayStart(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// DayBucket formats the calendar day of t in loc as YYYY-MM-DD.
func DayBucket(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dayBucketLayout)
}

func (in *RatingInput) normalize() error {
	if in.Rating < model.MinRating || in.Rating > model.MaxRating {
		return common.Validationf("rating must be between %d and %d", model.MinRating, model.MaxRating)
	}
	if in.Feedback != nil {
		fb := strings.TrimSpace(*in.Feedback)
		if utf8.RuneCountInString(fb) > MaxFeedbackLength {
			return common.Validationf("feedback must be at most %d characters", MaxFeedbackLength)
		}
		if fb == "" {
			in.Feedback = nil
		} else {
			in.Feedback = &fb
		}
	}
	return nil
}

// CheckAndRecord stores a rating from addr unless one already exists for the
// same hashed address on the current day, in which case it returns an error
// wrapping common.ErrRateLimited. Validation happens before any storage call.
func (g *RatingGuard) CheckAndRecord(ctx context.Context, addr string, in RatingInput) (*model.Rating, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	if addr == "" {
		addr = UnknownAddress
	}

	hash := HashAddress(addr, g.salt)
	now := g.now()
	dayStart := DayStart(now, g.loc)

	if g.locker != nil {
		release, ok, err := g.locker.Acquire(ctx, hash, g.lockTTL)
		switch {
		case err != nil:
			// The unique constraint still holds without the lock.
			slog.WarnContext(ctx, "rating lock unavailable", "error", err)
		case !ok:
			return nil, fmt.Errorf("rating submission in progress: %w", common.ErrRateLimited)
		default:
			defer release()
		}
	}

	exists, err := g.store.ExistsSince(ctx, hash, dayStart)
	if err != nil {
		return nil, fmt.Errorf("check previous rating: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("already rated today: %w", common.ErrRateLimited)
	}

	rating := &model.Rating{
		ID:        uuid.NewString(),
		Rating:    in.Rating,
		Feedback:  in.Feedback,
		IPHash:    hash,
		DayBucket: DayBucket(now, g.loc),
		CreatedAt: now,
	}
	if err := g.store.Create(ctx, rating); err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, fmt.Errorf("already rated today: %w", common.ErrRateLimited)
		}
		return nil, fmt.Errorf("record rating: %w", err)
	}
	return rating, nil
}
