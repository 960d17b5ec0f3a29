package model

import "time"

type ContactStatus string

const (
	ContactNew      ContactStatus = "new"
	ContactRead     ContactStatus = "read"
	ContactArchived ContactStatus = "archived"
)

func (s ContactStatus) Valid() bool {
	return s == ContactNew || s == ContactRead || s == ContactArchived
}

type Contact struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	Subject   string        `json:"subject"`
	Message   string        `json:"message"`
	Status    ContactStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}

// Message is a visitor note to the owner of a project.
type Message struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	CreatorID   string    `json:"creator_id"`
	SenderName  string    `json:"sender_name"`
	SenderEmail string    `json:"sender_email"`
	Body        string    `json:"body"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"created_at"`

	ProjectTitle *string `json:"project_title,omitempty"` // For display
}
