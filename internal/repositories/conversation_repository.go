package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"messaging-service/internal/models"
)

var ErrConversationNotFound = errors.New("conversation not found")

// ConversationRepository abstracts conversation persistence.
type ConversationRepository interface {
	CreateOrGet(ctx context.Context, userID, otherID, projectID string) (models.Conversation, error)
	GetConversation(ctx context.Context, conversationID string) (models.Conversation, error)
	ListConversations(ctx context.Context, userID string) ([]models.ConversationSummary, error)
	UnreadCounts(ctx context.Context, conversationID string) (models.UnreadCounts, error)
	MarkRead(ctx context.Context, conversationID string, readerID string) error
}

// ConversationRepo is a sqlx implementation of ConversationRepository.
type ConversationRepo struct {
	db *sqlx.DB
}

// NewConversationRepo constructs a ConversationRepo.
func NewConversationRepo(db *sqlx.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

const conversationColumns = `id, participant_a, participant_b, project_id, last_message, last_message_time, created_at, updated_at`

// CreateOrGet returns the canonical conversation for the unordered
// participant pair within the project, creating it when absent. The unique
// constraint on (participant_low, participant_high, project_id) plus the
// insert-or-nothing re-select makes concurrent calls converge on one row.
func (r *ConversationRepo) CreateOrGet(ctx context.Context, userID, otherID, projectID string) (models.Conversation, error) {
	if userID == otherID {
		return models.Conversation{}, errors.New("cannot create conversation with self")
	}
	low, high := userID, otherID
	if low > high {
		low, high = high, low
	}

	var conv models.Conversation
	lookup := `SELECT ` + conversationColumns + ` FROM conversations
        WHERE participant_low=$1 AND participant_high=$2 AND project_id=$3`
	err := r.db.GetContext(ctx, &conv, lookup, low, high, projectID)
	if err == nil {
		return conv, r.seedUnread(ctx, conv.ID, userID, otherID)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.Conversation{}, err
	}

	insert := `INSERT INTO conversations (id, participant_low, participant_high, participant_a, participant_b, project_id)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (participant_low, participant_high, project_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, insert, uuid.NewString(), low, high, userID, otherID, projectID); err != nil {
		return models.Conversation{}, err
	}

	// A concurrent creator may have won the insert; the re-select lands on
	// whichever row exists now.
	if err := r.db.GetContext(ctx, &conv, lookup, low, high, projectID); err != nil {
		return models.Conversation{}, err
	}
	return conv, r.seedUnread(ctx, conv.ID, userID, otherID)
}

func (r *ConversationRepo) seedUnread(ctx context.Context, conversationID, userID, otherID string) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO conversation_unread (conversation_id, user_id, unread)
        VALUES ($1, $2, 0), ($1, $3, 0)
        ON CONFLICT (conversation_id, user_id) DO NOTHING`, conversationID, userID, otherID)
	return err
}

// GetConversation fetches a conversation by id.
func (r *ConversationRepo) GetConversation(ctx context.Context, conversationID string) (models.Conversation, error) {
	var conv models.Conversation
	err := r.db.GetContext(ctx, &conv, `SELECT `+conversationColumns+` FROM conversations WHERE id=$1`, conversationID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Conversation{}, ErrConversationNotFound
	}
	return conv, err
}

// ListConversations returns the user's conversations, most recent activity
// first, annotated with the user's own unread count.
func (r *ConversationRepo) ListConversations(ctx context.Context, userID string) ([]models.ConversationSummary, error) {
	query := `SELECT c.id, c.participant_a, c.participant_b, c.project_id, c.last_message, c.last_message_time, c.created_at,
            COALESCE(cu.unread, 0) AS unread
        FROM conversations c
        LEFT JOIN conversation_unread cu ON cu.conversation_id = c.id AND cu.user_id = $1
        WHERE c.participant_a = $1 OR c.participant_b = $1
        ORDER BY c.last_message_time DESC`
	rows, err := r.db.QueryxContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.ConversationSummary
	for rows.Next() {
		var row struct {
			models.Conversation
			Unread int `db:"unread"`
		}
		if err := rows.StructScan(&row); err != nil {
			return nil, err
		}
		result = append(result, models.ConversationSummary{
			ID:              row.ID,
			OtherID:         row.OtherParticipant(userID),
			ProjectID:       row.ProjectID,
			LastMessage:     row.LastMessage,
			LastMessageTime: row.LastMessageTime,
			Unread:          row.Unread,
			CreatedAt:       row.CreatedAt,
		})
	}
	return result, rows.Err()
}

// UnreadCounts returns the per-participant unread map for a conversation.
// Participants without a row read as zero.
func (r *ConversationRepo) UnreadCounts(ctx context.Context, conversationID string) (models.UnreadCounts, error) {
	rows, err := r.db.QueryxContext(ctx, `SELECT user_id, unread FROM conversation_unread WHERE conversation_id=$1`, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := models.UnreadCounts{}
	for rows.Next() {
		var userID string
		var unread int
		if err := rows.Scan(&userID, &unread); err != nil {
			return nil, err
		}
		counts[userID] = unread
	}
	return counts, rows.Err()
}

// MarkRead flips the reader's unread messages and zeroes their counter in
// one transaction, so both apply or neither does. Calling it again with no
// new messages is a no-op.
func (r *ConversationRepo) MarkRead(ctx context.Context, conversationID string, readerID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE messages SET read = TRUE
        WHERE conversation_id=$1 AND receiver_id=$2 AND read = FALSE`, conversationID, readerID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO conversation_unread (conversation_id, user_id, unread)
        VALUES ($1, $2, 0)
        ON CONFLICT (conversation_id, user_id) DO UPDATE SET unread = 0`, conversationID, readerID); err != nil {
		return err
	}
	return tx.Commit()
}
