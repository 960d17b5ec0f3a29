// Package access decides what a principal may do to a project.
package access

import (
	"context"
	"errors"
	"fmt"

	"showcase/internal/common"
	"showcase/internal/common/security"
	"showcase/internal/domain/model"
)

type Capability string

const (
	CapView                Capability = "view"
	CapEdit                Capability = "edit"
	CapDelete              Capability = "delete"
	CapManageCollaborators Capability = "manage_collaborators"
	CapAcceptTerms         Capability = "accept_terms"
	CapTransferOwnership   Capability = "transfer_ownership"
)

// Tier is a principal's standing on one project. Higher tiers hold every
// capability of the lower ones.
type Tier int

const (
	TierNone Tier = iota
	TierCollaborator
	TierOwner
)

func (t Tier) String() string {
	switch t {
	case TierOwner:
		return "owner"
	case TierCollaborator:
		return "collaborator"
	default:
		return "none"
	}
}

// minTier is the single place capabilities are assigned to tiers.
var minTier = map[Capability]Tier{
	CapView:                TierCollaborator,
	CapEdit:                TierCollaborator,
	CapDelete:              TierOwner,
	CapManageCollaborators: TierOwner,
	CapAcceptTerms:         TierOwner,
	CapTransferOwnership:   TierOwner,
}

// Allows reports whether tier t grants c. Unknown capabilities are never granted.
func (t Tier) Allows(c Capability) bool {
	need, ok := minTier[c]
	return ok && t >= need
}

type ProjectFinder interface {
	FindByID(ctx context.Context, id string) (*model.Project, error)
}

type MembershipChecker interface {
	IsCollaborator(ctx context.Context, projectID, creatorID string) (bool, error)
}

// Engine evaluates ownership and collaborator membership from storage on
// every call; nothing is cached between requests.
type Engine struct {
	projects ProjectFinder
	members  MembershipChecker
}

func NewEngine(projects ProjectFinder, members MembershipChecker) *Engine {
	return &Engine{projects: projects, members: members}
}

// Tier loads the project and returns p's tier on it. A missing project
// yields common.ErrNotFound.
func (e *Engine) Tier(ctx context.Context, p security.Principal, projectID string) (Tier, error) {
	_, tier, err := e.resolve(ctx, p, projectID)
	return tier, err
}

func (e *Engine) resolve(ctx context.Context, p security.Principal, projectID string) (*model.Project, Tier, error) {
	project, err := e.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, TierNone, err
	}

	creator, ok := p.(security.Creator)
	if !ok || creator.ID == "" {
		return project, TierNone, nil
	}
	if project.CreatorID == creator.ID {
		return project, TierOwner, nil
	}

	member, err := e.members.IsCollaborator(ctx, projectID, creator.ID)
	if err != nil {
		return nil, TierNone, fmt.Errorf("check collaborator: %w", err)
	}
	if member {
		return project, TierCollaborator, nil
	}
	return project, TierNone, nil
}

// CanAccess reports whether p holds capability c on the project. A missing
// project is reported as (false, nil).
func (e *Engine) CanAccess(ctx context.Context, p security.Principal, projectID string, c Capability) (bool, error) {
	_, err := e.Authorize(ctx, p, projectID, c)
	switch {
	case err == nil:
		return true, nil
	case isDenial(err):
		return false, nil
	default:
		return false, err
	}
}

func (e *Engine) CanEdit(ctx context.Context, p security.Principal, projectID string) (bool, error) {
	return e.CanAccess(ctx, p, projectID, CapEdit)
}

func (e *Engine) IsPrimaryOwner(ctx context.Context, p security.Principal, projectID string) (bool, error) {
	tier, err := e.Tier(ctx, p, projectID)
	if err != nil {
		if isDenial(err) {
			return false, nil
		}
		return false, err
	}
	return tier == TierOwner, nil
}

// Authorize returns the project when p holds c on it. It fails with
// common.ErrNotFound when the project does not exist and common.ErrForbidden
// when it exists but p lacks the capability; the two are never conflated.
func (e *Engine) Authorize(ctx context.Context, p security.Principal, projectID string, c Capability) (*model.Project, error) {
	project, tier, err := e.resolve(ctx, p, projectID)
	if err != nil {
		return nil, err
	}
	if !tier.Allows(c) {
		return nil, fmt.Errorf("%s requires more than %s access: %w", c, tier, common.ErrForbidden)
	}
	return project, nil
}

func isDenial(err error) bool {
	return errors.Is(err, common.ErrNotFound) || errors.Is(err, common.ErrForbidden)
}
