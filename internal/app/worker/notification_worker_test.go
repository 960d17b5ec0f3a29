package worker

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
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

type contactMap map[string]*model.Contact

func (m contactMap) FindByID(_ context.Context, id string) (*model.Contact, error) {
	c, ok := m[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return c, nil
}

func newQueue(t *testing.T) (*queue.NotificationQueue, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return queue.NewNotificationQueue(rdb, "notifications"), mr
}

func newWorker(q JobQueue, contacts ContactFinder, url string, max int) *NotificationWorker {
	w := NewNotificationWorker(q, contacts, url, max)
	w.popTimeout = time.Second
	return w
}

func TestRunOnce_DeliversContact(t *testing.T) {
	var got WebhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	q, mr := newQueue(t)
	contacts := contactMap{"ct1": {ID: "ct1", Name: "Grace", Email: "grace@example.com", Message: "hi"}}
	w := newWorker(q, contacts, srv.URL, 3)

	require.NoError(t, q.Push(context.Background(), queue.NotificationJob{ContactID: "ct1"}))
	require.NoError(t, w.RunOnce(context.Background()))

	assert.Equal(t, "contact.created", got.Event)
	require.NotNil(t, got.Contact)
	assert.Equal(t, "Grace", got.Contact.Name)
	assert.False(t, mr.Exists("notifications"))
}

func TestRunOnce_RequeuesUntilMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	q, _ := newQueue(t)
	contacts := contactMap{"ct1": {ID: "ct1"}}
	w := newWorker(q, contacts, srv.URL, 2)
	ctx := context.Background()

	require.NoError(t, q.Push(ctx, queue.NotificationJob{ContactID: "ct1"}))

	require.NoError(t, w.RunOnce(ctx))
	requeued, err := q.Pop(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, 1, requeued.Attempts)

	require.NoError(t, q.Push(ctx, requeued))
	require.NoError(t, w.RunOnce(ctx))

	_, err = q.Pop(ctx, time.Second)
	require.ErrorIs(t, err, queue.ErrEmpty)
	assert.EqualValues(t, 2, calls.Load())
}

func TestRunOnce_MissingContactDropped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("webhook must not be called")
	}))
	defer srv.Close()

	q, _ := newQueue(t)
	w := newWorker(q, contactMap{}, srv.URL, 3)

	require.NoError(t, q.Push(context.Background(), queue.NotificationJob{ContactID: "gone"}))
	require.NoError(t, w.RunOnce(context.Background()))

	_, err := q.Pop(context.Background(), time.Second)
	require.ErrorIs(t, err, queue.ErrEmpty)
}

func TestRunOnce_EmptyQueue(t *testing.T) {
	q, _ := newQueue(t)
	w := newWorker(q, contactMap{}, "http://127.0.0.1:1", 3)

	require.ErrorIs(t, w.RunOnce(context.Background()), queue.ErrEmpty)
}

func TestStart_StopsOnCancel(t *testing.T) {
	q, _ := newQueue(t)
	w := newWorker(q, contactMap{}, "http://127.0.0.1:1", 3)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop")
	}
}
