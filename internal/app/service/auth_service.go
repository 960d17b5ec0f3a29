package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"showcase/internal/common"
	"showcase/internal/common/security"
	"showcase/internal/domain/model"
	"showcase/internal/domain/repository"

	"github.com/google/uuid"
)

var errInvalidCredentials = fmt.Errorf("invalid email or password: %w", common.ErrUnauthorized)

type AuthService struct {
	adminRepo   repository.AdminRepository
	creatorRepo repository.CreatorRepository
	tokens      *security.TokenService
}

func NewAuthService(adminRepo repository.AdminRepository, creatorRepo repository.CreatorRepository, tokens *security.TokenService) *AuthService {
	return &AuthService{adminRepo: adminRepo, creatorRepo: creatorRepo, tokens: tokens}
}

type SignupRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AdminAuthResponse struct {
	Admin *model.Admin `json:"admin"`
	Token string       `json:"token"`
}

type CreatorAuthResponse struct {
	Creator *model.Creator `json:"creator"`
	Token   string         `json:"token"`
}

func (s *AuthService) AdminLogin(ctx context.Context, req LoginRequest) (*AdminAuthResponse, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, common.Validationf("email and password are required")
	}

	admin, err := s.adminRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find admin: %w", err)
	}
	if !security.CheckPasswordHash(req.Password, admin.PasswordHash) {
		slog.WarnContext(ctx, "admin login rejected", "admin_id", admin.ID)
		return nil, errInvalidCredentials
	}

	token, err := s.tokens.IssueAdmin(admin.ID, admin.Email, admin.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	admin.PasswordHash = ""
	return &AdminAuthResponse{Admin: admin, Token: token}, nil
}

// AdminMe reloads the admin so a deleted account stops resolving even while
// its token is still valid.
func (s *AuthService) AdminMe(ctx context.Context, id string) (*model.Admin, error) {
	admin, err := s.adminRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load admin: %w", err)
	}
	admin.PasswordHash = ""
	return admin, nil
}

func (s *AuthService) CreatorSignup(ctx context.Context, req SignupRequest) (*CreatorAuthResponse, error) {
	email := normalizeEmail(req.Email)
	name := strings.TrimSpace(req.DisplayName)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := requireText("display_name", name, maxNameLength); err != nil {
		return nil, err
	}
	if len(req.Password) < minPasswordLength {
		return nil, common.Validationf("password must be at least %d characters", minPasswordLength)
	}

	hashedPassword, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	creator := &model.Creator{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hashedPassword,
		DisplayName:  name,
		SocialLinks:  model.SocialLinks{},
	}
	if err := s.creatorRepo.Create(ctx, creator); err != nil {
		// Repo returns common.ErrConflict for a taken email
		return nil, fmt.Errorf("failed to create creator: %w", err)
	}
	slog.InfoContext(ctx, "creator signed up", "creator_id", creator.ID)

	token, err := s.tokens.IssueCreator(creator.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	creator.PasswordHash = ""
	return &CreatorAuthResponse{Creator: creator, Token: token}, nil
}

func (s *AuthService) CreatorLogin(ctx context.Context, req LoginRequest) (*CreatorAuthResponse, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, common.Validationf("email and password are required")
	}

	creator, err := s.creatorRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find creator: %w", err)
	}
	if !security.CheckPasswordHash(req.Password, creator.PasswordHash) {
		return nil, errInvalidCredentials
	}

	token, err := s.tokens.IssueCreator(creator.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	creator.PasswordHash = ""
	return &CreatorAuthResponse{Creator: creator, Token: token}, nil
}

// EnsureAdmin creates the admin, or resets the password of an existing one
// with the same email. created reports which happened.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password, role string) (admin *model.Admin, created bool, err error) {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, false, err
	}
	if len(password) < minPasswordLength {
		return nil, false, common.Validationf("password must be at least %d characters", minPasswordLength)
	}
	if role != security.RoleAdmin && role != security.RoleSuperAdmin {
		return nil, false, common.Validationf("role must be %q or %q", security.RoleAdmin, security.RoleSuperAdmin)
	}

	hashedPassword, err := security.HashPassword(password)
	if err != nil {
		return nil, false, fmt.Errorf("failed to hash password: %w", err)
	}

	existing, err := s.adminRepo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if err := s.adminRepo.UpdatePassword(ctx, existing.ID, hashedPassword); err != nil {
			return nil, false, fmt.Errorf("failed to update admin: %w", err)
		}
		existing.PasswordHash = ""
		return existing, false, nil
	case !errors.Is(err, common.ErrNotFound):
		return nil, false, fmt.Errorf("failed to find admin: %w", err)
	}

	admin = &model.Admin{ID: uuid.NewString(), Email: email, PasswordHash: hashedPassword, Role: role}
	if err := s.adminRepo.Create(ctx, admin); err != nil {
		return nil, false, fmt.Errorf("failed to create admin: %w", err)
	}
	admin.PasswordHash = ""
	return admin, true, nil
}
