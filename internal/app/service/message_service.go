package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"showcase/internal/common"
	"showcase/internal/domain/model"
	"showcase/internal/domain/repository"

	"github.com/google/uuid"
)

type MessageService struct {
	messageRepo repository.MessageRepository
	projectRepo repository.ProjectRepository
}

func NewMessageService(messageRepo repository.MessageRepository, projectRepo repository.ProjectRepository) *MessageService {
	return &MessageService{messageRepo: messageRepo, projectRepo: projectRepo}
}

type SendMessageRequest struct {
	SenderName  string `json:"sender_name"`
	SenderEmail string `json:"sender_email"`
	Body        string `json:"body"`
}

// Send delivers a visitor message to the current owner of a published project.
func (s *MessageService) Send(ctx context.Context, projectSlug string, req SendMessageRequest) (*model.Message, error) {
	msg := &model.Message{
		ID:          uuid.NewString(),
		SenderName:  strings.TrimSpace(req.SenderName),
		SenderEmail: normalizeEmail(req.SenderEmail),
		Body:        strings.TrimSpace(req.Body),
	}
	if err := requireText("sender_name", msg.SenderName, maxNameLength); err != nil {
		return nil, err
	}
	if err := validateEmail(msg.SenderEmail); err != nil {
		return nil, err
	}
	if err := requireText("body", msg.Body, maxTextLength); err != nil {
		return nil, err
	}

	project, err := s.projectRepo.FindBySlug(ctx, projectSlug)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	if project.Status != model.ProjectPublished {
		return nil, fmt.Errorf("project %q: %w", projectSlug, common.ErrNotFound)
	}
	msg.ProjectID = project.ID
	msg.CreatorID = project.CreatorID
	msg.ProjectTitle = &project.Title

	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}
	slog.InfoContext(ctx, "message sent", "message_id", msg.ID, "project_id", project.ID)
	return msg, nil
}

func (s *MessageService) ListForCreator(ctx context.Context, creatorID string, page, pageSize int) ([]model.Message, int, error) {
	limit, offset := pageBounds(page, pageSize)
	msgs, total, err := s.messageRepo.ListForCreator(ctx, creatorID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list messages: %w", err)
	}
	return msgs, total, nil
}

// MarkRead only touches messages addressed to creatorID; anything else is
// reported as not found.
func (s *MessageService) MarkRead(ctx context.Context, creatorID, messageID string) error {
	if err := s.messageRepo.MarkRead(ctx, messageID, creatorID); err != nil {
		return fmt.Errorf("failed to mark message read: %w", err)
	}
	return nil
}

func (s *MessageService) AdminList(ctx context.Context, page, pageSize int) ([]model.Message, int, error) {
	limit, offset := pageBounds(page, pageSize)
	msgs, total, err := s.messageRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list messages: %w", err)
	}
	return msgs, total, nil
}

func (s *MessageService) AdminDelete(ctx context.Context, id string) error {
	if err := s.messageRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}
