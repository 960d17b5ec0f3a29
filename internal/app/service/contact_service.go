package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"showcase/internal/common"
	"showcase/internal/domain/model"
	"showcase/internal/domain/repository"
	"showcase/internal/platform/queue"

	"github.com/google/uuid"
)

const maxSubjectLength = 200

// Notifier receives new contact submissions. queue.NotificationQueue satisfies it.
type Notifier interface {
	Push(ctx context.Context, job queue.NotificationJob) error
}

type ContactService struct {
	contactRepo repository.ContactRepository
	notifier    Notifier // Optional
}

func NewContactService(contactRepo repository.ContactRepository, notifier Notifier) *ContactService {
	return &ContactService{contactRepo: contactRepo, notifier: notifier}
}

type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

type UpdateContactRequest struct {
	Status model.ContactStatus `json:"status"`
}

// Submit stores a contact form entry and queues a notification for it. A
// failed enqueue is logged and does not fail the submission.
func (s *ContactService) Submit(ctx context.Context, req ContactRequest) (*model.Contact, error) {
	contact := &model.Contact{
		ID:      uuid.NewString(),
		Name:    strings.TrimSpace(req.Name),
		Email:   normalizeEmail(req.Email),
		Subject: strings.TrimSpace(req.Subject),
		Message: strings.TrimSpace(req.Message),
		Status:  model.ContactNew,
	}
	if err := requireText("name", contact.Name, maxNameLength); err != nil {
		return nil, err
	}
	if err := validateEmail(contact.Email); err != nil {
		return nil, err
	}
	if err := limitText("subject", contact.Subject, maxSubjectLength); err != nil {
		return nil, err
	}
	if err := requireText("message", contact.Message, maxTextLength); err != nil {
		return nil, err
	}

	if err := s.contactRepo.Create(ctx, contact); err != nil {
		return nil, fmt.Errorf("failed to save contact: %w", err)
	}
	slog.InfoContext(ctx, "contact received", "contact_id", contact.ID)

	if s.notifier != nil {
		if err := s.notifier.Push(ctx, queue.NotificationJob{ContactID: contact.ID}); err != nil {
			slog.ErrorContext(ctx, "failed to enqueue contact notification", "contact_id", contact.ID, "error", err)
		}
	}
	return contact, nil
}

func (s *ContactService) Get(ctx context.Context, id string) (*model.Contact, error) {
	contact, err := s.contactRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load contact: %w", err)
	}
	return contact, nil
}

func (s *ContactService) List(ctx context.Context, page, pageSize int, status model.ContactStatus) ([]model.Contact, int, error) {
	if status != "" && !status.Valid() {
		return nil, 0, common.Validationf("unknown contact status %q", status)
	}
	limit, offset := pageBounds(page, pageSize)
	contacts, total, err := s.contactRepo.List(ctx, status, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list contacts: %w", err)
	}
	return contacts, total, nil
}

func (s *ContactService) SetStatus(ctx context.Context, id string, status model.ContactStatus) (*model.Contact, error) {
	if !status.Valid() {
		return nil, common.Validationf("unknown contact status %q", status)
	}
	if err := s.contactRepo.SetStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *ContactService) Delete(ctx context.Context, id string) error {
	if err := s.contactRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	return nil
}
