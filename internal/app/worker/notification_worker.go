package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"showcase/internal/common"
	"showcase/internal/domain/model"
	"showcase/internal/platform/queue"
)

const (
	defaultPopTimeout = 5 * time.Second
	errorBackoff      = 2 * time.Second
)

type JobQueue interface {
	Push(ctx context.Context, job queue.NotificationJob) error
	Pop(ctx context.Context, timeout time.Duration) (queue.NotificationJob, error)
}

type ContactFinder interface {
	FindByID(ctx context.Context, id string) (*model.Contact, error)
}

// WebhookPayload is what the notification endpoint receives.
type WebhookPayload struct {
	Event   string         `json:"event"`
	Contact *model.Contact `json:"contact"`
}

// NotificationWorker drains the contact notification queue and forwards each
// contact to a webhook. Failed deliveries are re-queued until maxAttempts.
type NotificationWorker struct {
	queue       JobQueue
	contacts    ContactFinder
	client      *http.Client
	webhookURL  string
	maxAttempts int
	popTimeout  time.Duration
}

func NewNotificationWorker(q JobQueue, contacts ContactFinder, webhookURL string, maxAttempts int) *NotificationWorker {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return &NotificationWorker{
		queue:       q,
		contacts:    contacts,
		client:      &http.Client{Timeout: 10 * time.Second},
		webhookURL:  webhookURL,
		maxAttempts: maxAttempts,
		popTimeout:  defaultPopTimeout,
	}
}

// Start blocks until ctx is cancelled.
func (w *NotificationWorker) Start(ctx context.Context) {
	slog.Info("notification worker started", "webhook", w.webhookURL, "max_attempts", w.maxAttempts)
	for {
		err := w.RunOnce(ctx)
		switch {
		case err == nil, errors.Is(err, queue.ErrEmpty):
		case ctx.Err() != nil:
			slog.Info("notification worker stopping")
			return
		default:
			slog.Error("notification worker error", "error", err)
			select {
			case <-ctx.Done():
				slog.Info("notification worker stopping")
				return
			case <-time.After(errorBackoff):
			}
		}
		if ctx.Err() != nil {
			slog.Info("notification worker stopping")
			return
		}
	}
}

// RunOnce waits for one job and handles it. It returns queue.ErrEmpty when
// nothing arrived, and only queue errors; delivery failures are handled by
// re-queueing.
func (w *NotificationWorker) RunOnce(ctx context.Context) error {
	job, err := w.queue.Pop(ctx, w.popTimeout)
	if err != nil {
		return err
	}
	w.handle(ctx, job)
	return nil
}

func (w *NotificationWorker) handle(ctx context.Context, job queue.NotificationJob) {
	contact, err := w.contacts.FindByID(ctx, job.ContactID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			slog.Warn("dropping notification for missing contact", "contact_id", job.ContactID)
			return
		}
		w.retry(ctx, job, err)
		return
	}

	if err := w.deliver(ctx, contact); err != nil {
		w.retry(ctx, job, err)
		return
	}
	slog.Info("contact notification delivered", "contact_id", contact.ID, "attempt", job.Attempts+1)
}

func (w *NotificationWorker) retry(ctx context.Context, job queue.NotificationJob, cause error) {
	job.Attempts++
	if job.Attempts >= w.maxAttempts {
		slog.Error("giving up on contact notification",
			"contact_id", job.ContactID, "attempts", job.Attempts, "error", cause)
		return
	}
	slog.Warn("contact notification failed, re-queueing",
		"contact_id", job.ContactID, "attempts", job.Attempts, "error", cause)
	if err := w.queue.Push(context.WithoutCancel(ctx), job); err != nil {
		slog.Error("failed to re-queue contact notification", "contact_id", job.ContactID, "error", err)
	}
}

func (w *NotificationWorker) deliver(ctx context.Context, contact *model.Contact) error {
	body, err := json.Marshal(WebhookPayload{Event: "contact.created", Contact: contact})
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook responded with status %d", resp.StatusCode)
	}
	return nil
}
