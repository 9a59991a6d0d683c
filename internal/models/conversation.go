package models

import "time"

// Conversation pairs exactly two participants within a project.
// ParticipantA/ParticipantB preserve creation order for display;
// membership is order-independent.
type Conversation struct {
	ID              string    `db:"id" json:"id"`
	ParticipantA    string    `db:"participant_a" json:"participant_a"`
	ParticipantB    string    `db:"participant_b" json:"participant_b"`
	ProjectID       string    `db:"project_id" json:"project_id"`
	LastMessage     string    `db:"last_message" json:"last_message"`
	LastMessageTime time.Time `db:"last_message_time" json:"last_message_time"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// HasParticipant reports whether the user belongs to the conversation.
func (c Conversation) HasParticipant(userID string) bool {
	return c.ParticipantA == userID || c.ParticipantB == userID
}

// OtherParticipant returns the participant facing userID. The caller must
// already be a participant.
func (c Conversation) OtherParticipant(userID string) string {
	if c.ParticipantA == userID {
		return c.ParticipantB
	}
	return c.ParticipantA
}

// UnreadCounts maps participant id to unread message count. A missing key
// means zero.
type UnreadCounts map[string]int

// For returns the unread count for a user, zero when absent.
func (u UnreadCounts) For(userID string) int {
	return u[userID]
}

// ConversationSummary is the per-caller API view of a conversation.
type ConversationSummary struct {
	ID              string    `db:"id" json:"id"`
	OtherID         string    `json:"participant_id"`
	ProjectID       string    `db:"project_id" json:"project_id"`
	LastMessage     string    `db:"last_message" json:"last_message"`
	LastMessageTime time.Time `db:"last_message_time" json:"last_message_time"`
	Unread          int       `db:"unread" json:"unread_count"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}
