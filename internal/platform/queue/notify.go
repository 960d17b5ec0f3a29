package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrEmpty is returned by Pop when no job arrived before the timeout.
var ErrEmpty = errors.New("queue empty")

// NotificationJob asks the worker to announce a new contact submission.
type NotificationJob struct {
	ContactID string `json:"contact_id"`
	Attempts  int    `json:"attempts"`
}

// NotificationQueue is a Redis list used as a FIFO: LPUSH in, BRPOP out.
type NotificationQueue struct {
	rdb  *redis.Client
	name string
}

func NewNotificationQueue(rdb *redis.Client, name string) *NotificationQueue {
	return &NotificationQueue{rdb: rdb, name: name}
}

func (q *NotificationQueue) Push(ctx context.Context, job NotificationJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal notification job: %w", err)
	}
	if err := q.rdb.LPush(ctx, q.name, data).Err(); err != nil {
		return fmt.Errorf("push notification job: %w", err)
	}
	return nil
}

// Pop blocks up to timeout for the next job.
func (q *NotificationQueue) Pop(ctx context.Context, timeout time.Duration) (NotificationJob, error) {
	var job NotificationJob
	res, err := q.rdb.BRPop(ctx, timeout, q.name).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return job, ErrEmpty
		}
		return job, fmt.Errorf("pop notification job: %w", err)
	}
	// res[0] is the list name, res[1] the payload.
	if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
		return job, fmt.Errorf("decode notification job: %w", err)
	}
	return job, nil
}
