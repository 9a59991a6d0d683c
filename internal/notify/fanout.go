package notify

import (
	"context"
	"fmt"
	"log"

	"messaging-service/internal/cache"
	"messaging-service/internal/models"
	"messaging-service/internal/observability"
	"messaging-service/internal/repositories"
)

const previewLimit = 60

// Notifier fans notifications out of domain events.
type Notifier struct {
	repo        repositories.NotificationRepository
	unreadCache cache.UnreadCache
}

// NewNotifier constructs a Notifier.
func NewNotifier(repo repositories.NotificationRepository, unreadCache cache.UnreadCache) *Notifier {
	return &Notifier{repo: repo, unreadCache: unreadCache}
}

// Create stores a notification. Callers are internal collaborators, so a
// missing user, type, or title is silently dropped instead of erroring.
func (n *Notifier) Create(ctx context.Context, notif models.Notification) error {
	if notif.UserID == "" || notif.Type == "" || notif.Title == "" {
		return nil
	}
	if err := n.repo.Create(ctx, &notif); err != nil {
		observability.IncFanoutFailure()
		return err
	}
	observability.IncNotificationCreated(string(notif.Type))
	n.unreadCache.Invalidate(ctx, notif.UserID)
	return nil
}

// NotifyMessage alerts the receiver about a new message. The preview is
// truncated for display only; stored message content is never cut.
func (n *Notifier) NotifyMessage(ctx context.Context, receiverID, senderName, conversationID, content string) error {
	return n.Create(ctx, models.Notification{
		UserID:      receiverID,
		Type:        models.NotifMessage,
		Title:       "New message",
		Message:     fmt.Sprintf("%s: %s", senderName, TruncatePreview(content)),
		Link:        "/conversations/" + conversationID,
		RelatedID:   conversationID,
		RelatedKind: models.RelatedConversation,
	})
}

// NotifyProjectEvent alerts a user about a project assignment or status
// change coming from the project collaborator.
func (n *Notifier) NotifyProjectEvent(ctx context.Context, notifType models.NotificationType, userID, projectID, title, message string) error {
	if notifType != models.NotifProjectAssigned && notifType != models.NotifProjectStatus {
		log.Printf("notify: dropping project event with unknown type %q", notifType)
		return nil
	}
	return n.Create(ctx, models.Notification{
		UserID:      userID,
		Type:        notifType,
		Title:       title,
		Message:     message,
		Link:        "/projects/" + projectID,
		RelatedID:   projectID,
		RelatedKind: models.RelatedProject,
	})
}

// TruncatePreview cuts text to the display preview length, appending an
// ellipsis when anything was removed. Rune-safe.
func TruncatePreview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewLimit {
		return text
	}
	return string(runes[:previewLimit]) + "…"
}
