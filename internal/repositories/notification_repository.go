package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"messaging-service/internal/models"
)

var ErrNotificationNotFound = errors.New("notification not found")

// NotificationRepository abstracts notification persistence.
type NotificationRepository interface {
	Create(ctx context.Context, notif *models.Notification) error
	ListByUser(ctx context.Context, userID string, page, limit int, readFilter *bool) ([]models.Notification, int, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
	MarkAllRead(ctx context.Context, userID string) error
}

// NotificationRepo is a sqlx implementation of NotificationRepository.
type NotificationRepo struct {
	db *sqlx.DB
}

// NewNotificationRepo constructs a NotificationRepo.
func NewNotificationRepo(db *sqlx.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

// Create stores a notification, filling id and created_at.
func (r *NotificationRepo) Create(ctx context.Context, notif *models.Notification) error {
	if notif.ID == "" {
		notif.ID = uuid.NewString()
	}
	return r.db.QueryRowxContext(ctx, `INSERT INTO notifications (id, user_id, type, title, message, link, related_id, related_kind)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING created_at`,
		notif.ID, notif.UserID, notif.Type, notif.Title, notif.Message, notif.Link, notif.RelatedID, notif.RelatedKind).
		Scan(&notif.CreatedAt)
}

// ListByUser returns one newest-first page of the user's notifications and
// the total matching the filter. readFilter nil means all.
func (r *NotificationRepo) ListByUser(ctx context.Context, userID string, page, limit int, readFilter *bool) ([]models.Notification, int, error) {
	where := `WHERE user_id = $1`
	args := []any{userID}
	if readFilter != nil {
		where += ` AND read = $2`
		args = append(args, *readFilter)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM notifications `+where, args...); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, user_id, type, title, message, link, related_id, related_kind, read, created_at
        FROM notifications ` + where + `
        ORDER BY created_at DESC, id DESC`
	if readFilter != nil {
		query += ` LIMIT $3 OFFSET $4`
	} else {
		query += ` LIMIT $2 OFFSET $3`
	}
	args = append(args, limit, (page-1)*limit)

	var notifs []models.Notification
	err := r.db.SelectContext(ctx, &notifs, query, args...)
	return notifs, total, err
}

// CountUnread returns the user's unread notification count.
func (r *NotificationRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM notifications WHERE user_id=$1 AND read = FALSE`, userID)
	return count, err
}

// MarkRead flips one notification owned by the user. A foreign or missing
// notification is reported uniformly as not found.
func (r *NotificationRepo) MarkRead(ctx context.Context, userID, notificationID string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET read = TRUE WHERE id=$1 AND user_id=$2`, notificationID, userID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead flips every unread notification for the user. Idempotent.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE notifications SET read = TRUE WHERE user_id=$1 AND read = FALSE`, userID)
	return err
}
