package service

import (
	"context"
	"testing"
	"time"

	"showcase/internal/common"
	"showcase/internal/domain/model"
	"showcase/internal/domain/repository/repotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateProfile(t *testing.T) {
	repo := repotest.NewCreatorRepo(model.Creator{ID: "c1", Email: "ada@example.com", DisplayName: "Ada", PasswordHash: "hash"})
	svc := NewCreatorService(repo)
	name, bio, avatar := " Ada L. ", "  builds things ", "https://cdn.example.com/ada.png"
	links := model.SocialLinks{" GitHub ": "https://github.com/ada", "mastodon": " "}

	c, err := svc.UpdateProfile(context.Background(), "c1", UpdateProfileRequest{
		DisplayName: &name, Bio: &bio, AvatarURL: &avatar, SocialLinks: &links,
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", c.DisplayName)
	assert.Equal(t, "builds things", c.Bio)
	assert.Equal(t, model.SocialLinks{"github": "https://github.com/ada"}, c.SocialLinks)
	assert.Empty(t, c.PasswordHash)
}

func TestUpdateProfile_Validation(t *testing.T) {
	repo := repotest.NewCreatorRepo(model.Creator{ID: "c1", DisplayName: "Ada"})
	svc := NewCreatorService(repo)
	blank := "  "
	badAvatar := "javascript:alert(1)"
	badLinks := model.SocialLinks{"github": "github.com/ada"}
	noPlatform := model.SocialLinks{" ": "https://example.com"}

	for name, req := range map[string]UpdateProfileRequest{
		"blank name":  {DisplayName: &blank},
		"bad avatar":  {AvatarURL: &badAvatar},
		"bad link":    {SocialLinks: &badLinks},
		"no platform": {SocialLinks: &noPlatform},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.UpdateProfile(context.Background(), "c1", req)
			require.ErrorIs(t, err, common.ErrValidation)
		})
	}

	_, err := svc.UpdateProfile(context.Background(), "ghost", UpdateProfileRequest{})
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestCreatorAcceptTermsAndPublicView(t *testing.T) {
	repo := repotest.NewCreatorRepo(model.Creator{ID: "c1", Email: "ada@example.com", DisplayName: "Ada"})
	svc := NewCreatorService(repo)
	fixed := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	c, err := svc.AcceptTerms(context.Background(), "c1")
	require.NoError(t, err)
	require.NotNil(t, c.TermsAcceptedAt)
	assert.Equal(t, fixed, *c.TermsAcceptedAt)

	public, err := svc.GetPublic(context.Background(), "c1")
	require.NoError(t, err)
	assert.Empty(t, public.Email)
	assert.Nil(t, public.TermsAcceptedAt)

	list, total, err := svc.ListPublic(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Empty(t, list[0].Email)
}
