package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"messaging-service/internal/cache"
	"messaging-service/internal/models"
	"messaging-service/internal/notify"
	"messaging-service/internal/repositories"
	"messaging-service/internal/telemetry"
)

// NotificationHandler manages notification endpoints and the project event
// intake.
type NotificationHandler struct {
	notifRepo   repositories.NotificationRepository
	notifier    *notify.Notifier
	unreadCache cache.UnreadCache
	audit       *telemetry.AuditEmitter
}

// NewNotificationHandler builds a NotificationHandler.
func NewNotificationHandler(notifRepo repositories.NotificationRepository, notifier *notify.Notifier, unreadCache cache.UnreadCache, audit *telemetry.AuditEmitter) *NotificationHandler {
	return &NotificationHandler{
		notifRepo:   notifRepo,
		notifier:    notifier,
		unreadCache: unreadCache,
		audit:       audit,
	}
}

// ListNotifications returns one newest-first page of the caller's
// notifications. The unread count is reported independently of the read
// filter.
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	userID := principalFromContext(c)
	page, limit := parsePagination(c)

	var readFilter *bool
	switch c.Query("read") {
	case "true":
		v := true
		readFilter = &v
	case "false":
		v := false
		readFilter = &v
	case "":
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "read filter must be true or false"})
		return
	}

	notifs, total, err := h.notifRepo.ListByUser(c.Request.Context(), userID, page, limit, readFilter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load notifications"})
		return
	}
	if notifs == nil {
		notifs = []models.Notification{}
	}

	unread, err := h.unreadCount(c, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count unread notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifs,
		"unread_count":  unread,
		"pagination": models.Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages(total, limit),
		},
	})
}

// UnreadNotificationCount returns the caller's unread notification count.
func (h *NotificationHandler) UnreadNotificationCount(c *gin.Context) {
	unread, err := h.unreadCount(c, principalFromContext(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count unread notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread_count": unread})
}

// MarkNotificationRead flips one of the caller's notifications. Missing and
// foreign notifications get the same not-found answer.
func (h *NotificationHandler) MarkNotificationRead(c *gin.Context) {
	notificationID, ok := validID(c, "notification_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
		return
	}

	userID := principalFromContext(c)
	if err := h.notifRepo.MarkRead(c.Request.Context(), userID, notificationID); err != nil {
		if errors.Is(err, repositories.ErrNotificationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update notification"})
		return
	}

	h.unreadCache.Invalidate(c.Request.Context(), userID)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// MarkAllNotificationsRead flips every unread notification for the caller.
// Idempotent.
func (h *NotificationHandler) MarkAllNotificationsRead(c *gin.Context) {
	userID := principalFromContext(c)
	if err := h.notifRepo.MarkAllRead(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update notifications"})
		return
	}

	h.unreadCache.Invalidate(c.Request.Context(), userID)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ProjectEvent is the project collaborator's entry point for fan-out.
// Incomplete events are accepted and dropped, matching the lenient create
// contract for internal callers.
func (h *NotificationHandler) ProjectEvent(c *gin.Context) {
	var req struct {
		Type      string `json:"type"`
		UserID    string `json:"user_id"`
		ProjectID string `json:"project_id"`
		Title     string `json:"title"`
		Message   string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.notifier.NotifyProjectEvent(c.Request.Context(), models.NotificationType(req.Type), req.UserID, req.ProjectID, req.Title, req.Message)
	if err != nil {
		h.audit.Emit(c.Request.Context(), "ERROR", "project event fan-out failed project_id="+req.ProjectID, requestIDFromContext(c), nil)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create notification"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

func (h *NotificationHandler) unreadCount(c *gin.Context, userID string) (int, error) {
	ctx := c.Request.Context()
	if count, ok := h.unreadCache.Get(ctx, userID); ok {
		return count, nil
	}
	count, err := h.notifRepo.CountUnread(ctx, userID)
	if err != nil {
		return 0, err
	}
	h.unreadCache.Set(ctx, userID, count)
	return count, nil
}
