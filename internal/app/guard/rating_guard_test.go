package guard

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"showcase/internal/common"
	"showcase/internal/domain/model"
	"showcase/internal/platform/queue"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore mimics the ratings table, including UNIQUE(ip_hash, day_bucket).
type memStore struct {
	mu      sync.Mutex
	ratings []model.Rating
	calls   int
	err     error
}

func (m *memStore) ExistsSince(_ context.Context, ipHash string, since time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return false, m.err
	}
	for _, r := range m.ratings {
		if r.IPHash == ipHash && !r.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) Create(_ context.Context, rating *model.Rating) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	for _, r := range m.ratings {
		if r.IPHash == rating.IPHash && r.DayBucket == rating.DayBucket {
			return common.ErrConflict
		}
	}
	m.ratings = append(m.ratings, *rating)
	return nil
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func TestClientAddress(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"forwarded chain", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "203.0.113.7"},
		{"forwarded single", map[string]string{"X-Forwarded-For": "198.51.100.2"}, "198.51.100.2"},
		{"forwarded wins over real ip", map[string]string{"X-Forwarded-For": "203.0.113.7", "X-Real-IP": "10.1.1.1"}, "203.0.113.7"},
		{"real ip", map[string]string{"X-Real-IP": "10.1.1.1"}, "10.1.1.1"},
		{"empty forwarded entry", map[string]string{"X-Forwarded-For": " , 10.0.0.1", "X-Real-IP": "10.1.1.1"}, "10.1.1.1"},
		{"nothing", nil, UnknownAddress},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/api/v1/ratings", nil)
			r.RemoteAddr = "192.0.2.1:5555"
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientAddress(r))
		})
	}
}

func TestHashAddress(t *testing.T) {
	salt := []byte("pepper")
	h := HashAddress("203.0.113.7", salt)

	assert.Len(t, h, 64)
	assert.Equal(t, h, HashAddress("203.0.113.7", salt))
	assert.NotEqual(t, h, HashAddress("203.0.113.8", salt))
	assert.NotEqual(t, h, HashAddress("203.0.113.7", []byte("salt")))
	assert.NotContains(t, h, "203.0.113.7")
}

func TestDayStartAndBucket(t *testing.T) {
	plus2 := time.FixedZone("UTC+2", 2*60*60)
	late := time.Date(2026, 3, 1, 23, 30, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), DayStart(late, time.UTC))
	assert.Equal(t, "2026-03-01", DayBucket(late, time.UTC))

	assert.True(t, DayStart(late, plus2).Equal(time.Date(2026, 3, 1, 22, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2026-03-02", DayBucket(late, plus2))
}

func TestCheckAndRecord_DailyScenario(t *testing.T) {
	store := &memStore{}
	clk := &clock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	g := NewRatingGuard(store, "salt", time.UTC, WithClock(clk.now))
	ctx := context.Background()
	addr := "203.0.113.7"

	first, err := g.CheckAndRecord(ctx, addr, RatingInput{Rating: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, first.Rating)
	assert.Equal(t, "2026-03-01", first.DayBucket)
	assert.NotEqual(t, addr, first.IPHash)

	clk.t = time.Date(2026, 3, 1, 21, 0, 0, 0, time.UTC)
	_, err = g.CheckAndRecord(ctx, addr, RatingInput{Rating: 2})
	require.ErrorIs(t, err, common.ErrRateLimited)
	assert.Equal(t, 429, common.HTTPStatusFromError(err))

	clk.t = time.Date(2026, 3, 2, 0, 1, 0, 0, time.UTC)
	next, err := g.CheckAndRecord(ctx, addr, RatingInput{Rating: 3})
	require.NoError(t, err)
	assert.Equal(t, "2026-03-02", next.DayBucket)

	assert.Len(t, store.ratings, 2)
}

func TestCheckAndRecord_DifferentAddressesIndependent(t *testing.T) {
	store := &memStore{}
	g := NewRatingGuard(store, "salt", time.UTC)

	_, err := g.CheckAndRecord(context.Background(), "203.0.113.7", RatingInput{Rating: 4})
	require.NoError(t, err)
	_, err = g.CheckAndRecord(context.Background(), "203.0.113.8", RatingInput{Rating: 4})
	require.NoError(t, err)
}

func TestCheckAndRecord_EmptyAddressSharesUnknownBucket(t *testing.T) {
	store := &memStore{}
	g := NewRatingGuard(store, "salt", time.UTC)

	_, err := g.CheckAndRecord(context.Background(), "", RatingInput{Rating: 4})
	require.NoError(t, err)
	_, err = g.CheckAndRecord(context.Background(), UnknownAddress, RatingInput{Rating: 1})
	require.ErrorIs(t, err, common.ErrRateLimited)
}

func TestCheckAndRecord_ValidationBeforeStorage(t *testing.T) {
	long := strings.Repeat("é", MaxFeedbackLength+1)
	tests := []struct {
		name string
		in   RatingInput
	}{
		{"zero", RatingInput{Rating: 0}},
		{"six", RatingInput{Rating: 6}},
		{"negative", RatingInput{Rating: -1}},
		{"feedback too long", RatingInput{Rating: 3, Feedback: &long}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memStore{}
			g := NewRatingGuard(store, "salt", time.UTC)

			_, err := g.CheckAndRecord(context.Background(), "203.0.113.7", tt.in)
			require.ErrorIs(t, err, common.ErrValidation)
			assert.Zero(t, store.calls)
		})
	}
}

func TestCheckAndRecord_FeedbackNormalized(t *testing.T) {
	g := NewRatingGuard(&memStore{}, "salt", time.UTC)
	blank := "   "
	text := "  lovely work  "

	r, err := g.CheckAndRecord(context.Background(), "a", RatingInput{Rating: 4, Feedback: &blank})
	require.NoError(t, err)
	assert.Nil(t, r.Feedback)

	r, err = g.CheckAndRecord(context.Background(), "b", RatingInput{Rating: 4, Feedback: &text})
	require.NoError(t, err)
	require.NotNil(t, r.Feedback)
	assert.Equal(t, "lovely work", *r.Feedback)
}

func TestCheckAndRecord_ConcurrentSameAddress(t *testing.T) {
	store := &memStore{}
	g := NewRatingGuard(store, "salt", time.UTC)

	const n = 32
	var accepted, limited atomic.Int32
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := g.CheckAndRecord(context.Background(), "203.0.113.7", RatingInput{Rating: 5})
			switch {
			case err == nil:
				accepted.Add(1)
			case errors.Is(err, common.ErrRateLimited):
				limited.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, accepted.Load())
	assert.EqualValues(t, n-1, limited.Load())
	assert.Len(t, store.ratings, 1)
}

func TestCheckAndRecord_StoreFailureIsInternal(t *testing.T) {
	store := &memStore{err: errors.New("connection refused")}
	g := NewRatingGuard(store, "salt", time.UTC)

	_, err := g.CheckAndRecord(context.Background(), "203.0.113.7", RatingInput{Rating: 5})
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrRateLimited)
	assert.Equal(t, 500, common.HTTPStatusFromError(err))
}

func newRedisLocker(t *testing.T) (*queue.RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return queue.NewRedisLocker(rdb, "rating:"), mr
}

func TestCheckAndRecord_WithRedisLocker(t *testing.T) {
	locker, mr := newRedisLocker(t)
	store := &memStore{}
	g := NewRatingGuard(store, "salt", time.UTC, WithLocker(locker, time.Second))

	_, err := g.CheckAndRecord(context.Background(), "203.0.113.7", RatingInput{Rating: 5})
	require.NoError(t, err)
	assert.Empty(t, mr.Keys(), "lock must be released after the call")

	_, err = g.CheckAndRecord(context.Background(), "203.0.113.7", RatingInput{Rating: 5})
	require.ErrorIs(t, err, common.ErrRateLimited)
}

func TestCheckAndRecord_ContendedLockIsRateLimited(t *testing.T) {
	locker, _ := newRedisLocker(t)
	store := &memStore{}
	g := NewRatingGuard(store, "salt", time.UTC, WithLocker(locker, time.Second))

	hash := HashAddress("203.0.113.7", []byte("salt"))
	release, ok, err := locker.Acquire(context.Background(), hash, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	defer release()

	_, err = g.CheckAndRecord(context.Background(), "203.0.113.7", RatingInput{Rating: 5})
	require.ErrorIs(t, err, common.ErrRateLimited)
	assert.Zero(t, store.calls)
}

func TestCheckAndRecord_LockerDownFallsBackToConstraint(t *testing.T) {
	locker, mr := newRedisLocker(t)
	mr.Close()
	store := &memStore{}
	g := NewRatingGuard(store, "salt", time.UTC, WithLocker(locker, time.Second))

	_, err := g.CheckAndRecord(context.Background(), "203.0.113.7", RatingInput{Rating: 5})
	require.NoError(t, err)
	_, err = g.CheckAndRecord(context.Background(), "203.0.113.7", RatingInput{Rating: 5})
	require.ErrorIs(t, err, common.ErrRateLimited)
}
