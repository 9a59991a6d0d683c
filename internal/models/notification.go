package models

import "time"

// NotificationType discriminates notification sources.
type NotificationType string

const (
	NotifMessage         NotificationType = "message"
	NotifProjectAssigned NotificationType = "project_assigned"
	NotifProjectStatus   NotificationType = "project_status"
)

// RelatedKind tags the entity a notification points at.
type RelatedKind string

const (
	RelatedConversation RelatedKind = "conversation"
	RelatedProject      RelatedKind = "project"
)

// Notification is a durable user-scoped alert. RelatedID plus RelatedKind
// form a tagged reference to a conversation or a project.
type Notification struct {
	ID          string           `db:"id" json:"id"`
	UserID      string           `db:"user_id" json:"user_id"`
	Type        NotificationType `db:"type" json:"type"`
	Title       string           `db:"title" json:"title"`
	Message     string           `db:"message" json:"message"`
	Link        string           `db:"link" json:"link"`
	RelatedID   string           `db:"related_id" json:"related_id,omitempty"`
	RelatedKind RelatedKind      `db:"related_kind" json:"related_kind,omitempty"`
	Read        bool             `db:"read" json:"read"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
}
