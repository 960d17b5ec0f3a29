package service

import (
	"context"
	"testing"
	"time"

	"showcase/internal/common"
	"showcase/internal/common/security"
	"showcase/internal/domain/model"
	"showcase/internal/domain/repository/repotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T) (*AuthService, *repotest.AdminRepo, *repotest.CreatorRepo, *security.TokenService) {
	t.Helper()
	tokens := security.NewTokenService([]byte("test-secret"), 7*24*time.Hour, 30*24*time.Hour)
	admins := repotest.NewAdminRepo()
	creators := repotest.NewCreatorRepo()
	return NewAuthService(admins, creators, tokens), admins, creators, tokens
}

func TestCreatorSignupAndLogin(t *testing.T) {
	svc, _, creators, tokens := newAuthService(t)
	ctx := context.Background()

	resp, err := svc.CreatorSignup(ctx, SignupRequest{
		Email:       "  Ada@Example.com ",
		Password:    "correct horse",
		DisplayName: " Ada ",
	})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", resp.Creator.Email)
	assert.Equal(t, "Ada", resp.Creator.DisplayName)
	assert.Empty(t, resp.Creator.PasswordHash)

	stored, err := creators.FindByID(ctx, resp.Creator.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", stored.PasswordHash)

	claims, err := tokens.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, security.KindCreator, claims.Kind)
	assert.Equal(t, resp.Creator.ID, claims.Subject)

	login, err := svc.CreatorLogin(ctx, LoginRequest{Email: "ADA@example.com", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, resp.Creator.ID, login.Creator.ID)
	assert.Empty(t, login.Creator.PasswordHash)
}

func TestCreatorSignup_Validation(t *testing.T) {
	svc, _, _, _ := newAuthService(t)

	tests := []struct {
		name string
		req  SignupRequest
	}{
		{"missing email", SignupRequest{Password: "longenough", DisplayName: "Ada"}},
		{"bad email", SignupRequest{Email: "not-an-email", Password: "longenough", DisplayName: "Ada"}},
		{"short password", SignupRequest{Email: "ada@example.com", Password: "short", DisplayName: "Ada"}},
		{"blank name", SignupRequest{Email: "ada@example.com", Password: "longenough", DisplayName: "   "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreatorSignup(context.Background(), tt.req)
			require.ErrorIs(t, err, common.ErrValidation)
		})
	}
}

func TestCreatorSignup_DuplicateEmail(t *testing.T) {
	svc, _, _, _ := newAuthService(t)
	req := SignupRequest{Email: "ada@example.com", Password: "longenough", DisplayName: "Ada"}

	_, err := svc.CreatorSignup(context.Background(), req)
	require.NoError(t, err)

	req.Email = "ADA@example.com"
	_, err = svc.CreatorSignup(context.Background(), req)
	require.ErrorIs(t, err, common.ErrConflict)
}

func TestCreatorLogin_BadCredentials(t *testing.T) {
	svc, _, _, _ := newAuthService(t)
	_, err := svc.CreatorSignup(context.Background(), SignupRequest{Email: "ada@example.com", Password: "longenough", DisplayName: "Ada"})
	require.NoError(t, err)

	_, err = svc.CreatorLogin(context.Background(), LoginRequest{Email: "ada@example.com", Password: "wrong-password"})
	require.ErrorIs(t, err, common.ErrUnauthorized)

	_, err = svc.CreatorLogin(context.Background(), LoginRequest{Email: "ghost@example.com", Password: "longenough"})
	require.ErrorIs(t, err, common.ErrUnauthorized)

	_, err = svc.CreatorLogin(context.Background(), LoginRequest{})
	require.ErrorIs(t, err, common.ErrValidation)
}

func TestAdminLogin(t *testing.T) {
	svc, admins, _, tokens := newAuthService(t)
	hash, err := security.HashPassword("admin-password")
	require.NoError(t, err)
	require.NoError(t, admins.Create(context.Background(), &model.Admin{
		ID: "a1", Email: "root@example.com", PasswordHash: hash, Role: security.RoleSuperAdmin,
	}))

	resp, err := svc.AdminLogin(context.Background(), LoginRequest{Email: "Root@Example.com", Password: "admin-password"})
	require.NoError(t, err)
	assert.Empty(t, resp.Admin.PasswordHash)

	claims, err := tokens.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, security.KindAdmin, claims.Kind)
	assert.Equal(t, security.RoleSuperAdmin, claims.Role)
	assert.Equal(t, "root@example.com", claims.Email)

	_, err = svc.AdminLogin(context.Background(), LoginRequest{Email: "root@example.com", Password: "nope-nope"})
	require.ErrorIs(t, err, common.ErrUnauthorized)

	me, err := svc.AdminMe(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, "root@example.com", me.Email)
	assert.Empty(t, me.PasswordHash)
}

func TestEnsureAdmin_CreatesThenResetsPassword(t *testing.T) {
	svc, admins, _, _ := newAuthService(t)
	ctx := context.Background()

	admin, created, err := svc.EnsureAdmin(ctx, "root@example.com", "first-password", security.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, created)

	again, created, err := svc.EnsureAdmin(ctx, "ROOT@example.com", "second-password", security.RoleAdmin)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, admin.ID, again.ID)

	stored, err := admins.FindByID(ctx, admin.ID)
	require.NoError(t, err)
	assert.True(t, security.CheckPasswordHash("second-password", stored.PasswordHash))

	_, _, err = svc.EnsureAdmin(ctx, "root@example.com", "second-password", "owner")
	require.ErrorIs(t, err, common.ErrValidation)
}
