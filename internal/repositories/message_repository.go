package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"messaging-service/internal/models"
)

// MessageRepository defines interactions for conversation messages.
type MessageRepository interface {
	CreateMessage(ctx context.Context, conversationID, senderID, receiverID, content string) (models.Message, error)
	ListMessages(ctx context.Context, conversationID string, page, limit int) ([]models.Message, int, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// CreateMessage persists a message and, in the same transaction, refreshes
// the conversation preview and increments the receiver's unread counter.
// The increment is a single UPDATE at the store, never read-modify-write,
// so concurrent sends to the same receiver do not lose counts.
func (r *MessageRepo) CreateMessage(ctx context.Context, conversationID, senderID, receiverID, content string) (models.Message, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Message{}, err
	}
	defer tx.Rollback()

	var msg models.Message
	if err := tx.QueryRowxContext(ctx, `INSERT INTO messages (id, conversation_id, sender_id, receiver_id, content)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, conversation_id, sender_id, receiver_id, content, read, created_at`,
		uuid.NewString(), conversationID, senderID, receiverID, content).
		Scan(&msg.ID, &msg.ConversationID, &msg.SenderID, &msg.ReceiverID, &msg.Content, &msg.Read, &msg.CreatedAt); err != nil {
		return models.Message{}, err
	}

	if _, err := tx.ExecContext(ctx, `UPDATE conversations
        SET last_message=$1, last_message_time=$2, updated_at=NOW()
        WHERE id=$3`, msg.Content, msg.CreatedAt, conversationID); err != nil {
		return models.Message{}, err
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO conversation_unread (conversation_id, user_id, unread)
        VALUES ($1, $2, 1)
        ON CONFLICT (conversation_id, user_id) DO UPDATE SET unread = conversation_unread.unread + 1`,
		conversationID, receiverID); err != nil {
		return models.Message{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Message{}, err
	}
	return msg, nil
}

// ListMessages returns one page of a conversation's history plus the total
// message count. Storage is walked newest-first for the offset, then the
// page is reversed so callers always render oldest-first chronological
// order.
func (r *MessageRepo) ListMessages(ctx context.Context, conversationID string, page, limit int) ([]models.Message, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM messages WHERE conversation_id=$1`, conversationID); err != nil {
		return nil, 0, err
	}

	var msgs []models.Message
	query := `SELECT id, conversation_id, sender_id, receiver_id, content, read, created_at
        FROM messages
        WHERE conversation_id=$1
        ORDER BY created_at DESC, id DESC
        LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &msgs, query, conversationID, limit, (page-1)*limit); err != nil {
		return nil, 0, err
	}

	return oldestFirst(msgs), total, nil
}

// oldestFirst reverses a newest-first page into chronological order.
func oldestFirst(msgs []models.Message) []models.Message {
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs
}
