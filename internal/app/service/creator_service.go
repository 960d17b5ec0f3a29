package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"showcase/internal/common"
	"showcase/internal/domain/model"
	"showcase/internal/domain/repository"
)

const maxSocialLinks = 10

type CreatorService struct {
	creatorRepo repository.CreatorRepository
	now         func() time.Time
}

func NewCreatorService(creatorRepo repository.CreatorRepository) *CreatorService {
	return &CreatorService{creatorRepo: creatorRepo, now: time.Now}
}

type UpdateProfileRequest struct {
	DisplayName *string            `json:"display_name,omitempty"`
	Bio         *string            `json:"bio,omitempty"`
	AvatarURL   *string            `json:"avatar_url,omitempty"`
	SocialLinks *model.SocialLinks `json:"social_links,omitempty"`
}

// GetProfile returns the full record for the creator themself.
func (s *CreatorService) GetProfile(ctx context.Context, creatorID string) (*model.Creator, error) {
	creator, err := s.creatorRepo.FindByID(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load creator: %w", err)
	}
	creator.PasswordHash = ""
	return creator, nil
}

// GetPublic returns the public view of any creator.
func (s *CreatorService) GetPublic(ctx context.Context, creatorID string) (*model.Creator, error) {
	creator, err := s.creatorRepo.FindByID(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load creator: %w", err)
	}
	public := creator.Public()
	return &public, nil
}

func (s *CreatorService) UpdateProfile(ctx context.Context, creatorID string, req UpdateProfileRequest) (*model.Creator, error) {
	creator, err := s.creatorRepo.FindByID(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load creator: %w", err)
	}

	if req.DisplayName != nil {
		name := strings.TrimSpace(*req.DisplayName)
		if err := requireText("display_name", name, maxNameLength); err != nil {
			return nil, err
		}
		creator.DisplayName = name
	}
	if req.Bio != nil {
		if err := limitText("bio", *req.Bio, maxTextLength); err != nil {
			return nil, err
		}
		creator.Bio = strings.TrimSpace(*req.Bio)
	}
	if req.AvatarURL != nil {
		avatar := strings.TrimSpace(*req.AvatarURL)
		if err := validateHTTPURL("avatar_url", avatar); err != nil {
			return nil, err
		}
		creator.AvatarURL = avatar
	}
	if req.SocialLinks != nil {
		links, err := normalizeSocialLinks(*req.SocialLinks)
		if err != nil {
			return nil, err
		}
		creator.SocialLinks = links
	}

	if err := s.creatorRepo.UpdateProfile(ctx, creator); err != nil {
		return nil, fmt.Errorf("failed to update creator: %w", err)
	}
	creator.PasswordHash = ""
	return creator, nil
}

// normalizeSocialLinks lowercases platform names, drops empty URLs and
// requires every remaining value to be an absolute http(s) URL.
func normalizeSocialLinks(in model.SocialLinks) (model.SocialLinks, error) {
	out := model.SocialLinks{}
	for platform, link := range in {
		platform = strings.ToLower(strings.TrimSpace(platform))
		link = strings.TrimSpace(link)
		if platform == "" {
			return nil, common.Validationf("social link platform name is required")
		}
		if link == "" {
			continue
		}
		if err := validateHTTPURL("social_links."+platform, link); err != nil {
			return nil, err
		}
		out[platform] = link
	}
	if len(out) > maxSocialLinks {
		return nil, common.Validationf("at most %d social links are allowed", maxSocialLinks)
	}
	return out, nil
}

// AcceptTerms records the creator's acceptance of the platform terms.
func (s *CreatorService) AcceptTerms(ctx context.Context, creatorID string) (*model.Creator, error) {
	if err := s.creatorRepo.SetTermsAccepted(ctx, creatorID, s.now().UTC()); err != nil {
		return nil, fmt.Errorf("failed to accept terms: %w", err)
	}
	return s.GetProfile(ctx, creatorID)
}

func (s *CreatorService) ListPublic(ctx context.Context, page, pageSize int) ([]model.Creator, int, error) {
	limit, offset := pageBounds(page, pageSize)
	creators, total, err := s.creatorRepo.ListPublic(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list creators: %w", err)
	}
	for i := range creators {
		creators[i] = creators[i].Public()
	}
	return creators, total, nil
}
