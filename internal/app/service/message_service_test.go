package service

import (
	"context"
	"testing"

	"showcase/internal/common"
	"showcase/internal/domain/model"
	"showcase/internal/domain/repository/repotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMessageFixture() (*MessageService, *repotest.MessageRepo) {
	projects := repotest.NewProjectRepo(
		model.Project{ID: "p1", CreatorID: "owner", Title: "Orbit", Slug: "orbit", Status: model.ProjectPublished},
		model.Project{ID: "p2", CreatorID: "owner", Title: "Secret", Slug: "secret", Status: model.ProjectDraft},
	)
	messages := repotest.NewMessageRepo()
	return NewMessageService(messages, projects), messages
}

func TestMessageSendAndRead(t *testing.T) {
	svc, _ := newMessageFixture()
	ctx := context.Background()

	msg, err := svc.Send(ctx, "orbit", SendMessageRequest{SenderName: "Lin", SenderEmail: "lin@example.com", Body: "Great work"})
	require.NoError(t, err)
	assert.Equal(t, "owner", msg.CreatorID)
	assert.Equal(t, "p1", msg.ProjectID)

	inbox, total, err := svc.ListForCreator(ctx, "owner", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.False(t, inbox[0].Read)

	require.ErrorIs(t, svc.MarkRead(ctx, "someone-else", msg.ID), common.ErrNotFound)
	require.NoError(t, svc.MarkRead(ctx, "owner", msg.ID))

	inbox, _, err = svc.ListForCreator(ctx, "owner", 1, 20)
	require.NoError(t, err)
	assert.True(t, inbox[0].Read)

	all, total, err := svc.AdminList(ctx, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.NoError(t, svc.AdminDelete(ctx, all[0].ID))
}

func TestMessageSend_UnpublishedOrMissingProject(t *testing.T) {
	svc, _ := newMessageFixture()
	req := SendMessageRequest{SenderName: "Lin", SenderEmail: "lin@example.com", Body: "hi"}

	_, err := svc.Send(context.Background(), "secret", req)
	require.ErrorIs(t, err, common.ErrNotFound)

	_, err = svc.Send(context.Background(), "nope", req)
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestMessageSend_ValidationFirst(t *testing.T) {
	svc, messages := newMessageFixture()

	_, err := svc.Send(context.Background(), "nope", SendMessageRequest{SenderName: "Lin", SenderEmail: "bad", Body: "hi"})
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Empty(t, messages.Messages)
}
