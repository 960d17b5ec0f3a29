package model

import (
	"time"
)

type ProjectStatus string

const (
	ProjectDraft     ProjectStatus = "draft"
	ProjectPublished ProjectStatus = "published"
	ProjectHidden    ProjectStatus = "hidden"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectDraft, ProjectPublished, ProjectHidden:
		return true
	}
	return false
}

type Project struct {
	ID              string        `json:"id"`
	CreatorID       string        `json:"creator_id"` // Primary owner
	Title           string        `json:"title"`
	Slug            string        `json:"slug"`
	Description     string        `json:"description"`
	ProjectURL      string        `json:"project_url"`
	RepoURL         string        `json:"repo_url"`
	Tags            []string      `json:"tags"`
	Status          ProjectStatus `json:"status"`
	Featured        bool          `json:"featured"`
	TermsAcceptedAt *time.Time    `json:"terms_accepted_at,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`

	CreatorName   *string `json:"creator_name,omitempty"`   // For display
	Collaborating bool    `json:"collaborating,omitempty"` // Set on dashboard listings
}

// Collaborator links an additional creator to a project they do not own.
type Collaborator struct {
	ProjectID   string    `json:"project_id"`
	CreatorID   string    `json:"creator_id"`
	DisplayName string    `json:"display_name,omitempty"`
	AddedAt     time.Time `json:"added_at"`
}
