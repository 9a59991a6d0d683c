package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"messaging-service/internal/models"
	"messaging-service/internal/notify"
	"messaging-service/internal/observability"
	"messaging-service/internal/repositories"
	"messaging-service/internal/telemetry"
)

// ConversationHandler manages conversation and message endpoints.
type ConversationHandler struct {
	convRepo repositories.ConversationRepository
	msgRepo  repositories.MessageRepository
	notifier *notify.Notifier
	audit    *telemetry.AuditEmitter
}

// NewConversationHandler builds a ConversationHandler.
func NewConversationHandler(convRepo repositories.ConversationRepository, msgRepo repositories.MessageRepository, notifier *notify.Notifier, audit *telemetry.AuditEmitter) *ConversationHandler {
	return &ConversationHandler{
		convRepo: convRepo,
		msgRepo:  msgRepo,
		notifier: notifier,
		audit:    audit,
	}
}

// ListConversations returns the caller's conversations, latest activity
// first, each annotated with the caller's own unread count.
func (h *ConversationHandler) ListConversations(c *gin.Context) {
	userID := principalFromContext(c)

	conversations, err := h.convRepo.ListConversations(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load conversations"})
		return
	}
	if conversations == nil {
		conversations = []models.ConversationSummary{}
	}

	c.JSON(http.StatusOK, gin.H{"conversations": conversations})
}

// StartConversation returns the canonical conversation for the caller, the
// other participant, and the project, creating it on first request.
func (h *ConversationHandler) StartConversation(c *gin.Context) {
	var req struct {
		ParticipantID string `json:"participant_id" binding:"required"`
		ProjectID     string `json:"project_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := principalFromContext(c)
	if userID == req.ParticipantID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot start a conversation with yourself"})
		return
	}

	conv, err := h.convRepo.CreateOrGet(c.Request.Context(), userID, req.ParticipantID, req.ProjectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create conversation"})
		return
	}

	counts, err := h.convRepo.UnreadCounts(c.Request.Context(), conv.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load unread counts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"conversation": conv,
		"unread_count": counts,
		"unread":       counts.For(userID),
	})
}

// MarkConversationRead flips the caller's unread messages and zeroes their
// counter.
func (h *ConversationHandler) MarkConversationRead(c *gin.Context) {
	conversationID, ok := validID(c, "conversation_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}

	userID := principalFromContext(c)
	conv, err := h.convRepo.GetConversation(c.Request.Context(), conversationID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrConversationNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "conversation not found"})
		return
	}
	if !conv.HasParticipant(userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a conversation participant"})
		return
	}

	if err := h.convRepo.MarkRead(c.Request.Context(), conversationID, userID); err != nil {
		h.emitAudit(c, "ERROR", "mark read failed", conversationID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update read state"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetConversationMessages returns one chronological page of a
// conversation's history. Unless silent=true, the caller's unread messages
// are marked read as a side effect.
func (h *ConversationHandler) GetConversationMessages(c *gin.Context) {
	conversationID, ok := validID(c, "conversation_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}

	userID := principalFromContext(c)
	conv, err := h.convRepo.GetConversation(c.Request.Context(), conversationID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrConversationNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "conversation not found"})
		return
	}
	if !conv.HasParticipant(userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a conversation participant"})
		return
	}

	page, limit := parsePagination(c)
	msgs, total, err := h.msgRepo.ListMessages(c.Request.Context(), conversationID, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}
	if msgs == nil {
		msgs = []models.Message{}
	}

	if c.Query("silent") != "true" {
		if err := h.convRepo.MarkRead(c.Request.Context(), conversationID, userID); err != nil {
			h.emitAudit(c, "ERROR", "mark read failed", conversationID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update read state"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": msgs,
		"pagination": models.Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages(total, limit),
		},
	})
}

// PostConversationMessage runs the message pipeline: membership check,
// persist (with conversation preview and unread counter in the same
// transaction), then best-effort notification fan-out.
func (h *ConversationHandler) PostConversationMessage(c *gin.Context) {
	conversationID, ok := validID(c, "conversation_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}

	// Validation is settled before any store access; only the
	// receiver-is-other-participant check needs the conversation in hand.
	var req struct {
		ReceiverID string `json:"receiver_id" binding:"required"`
		Content    string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content must not be empty"})
		return
	}

	userID := principalFromContext(c)
	conv, err := h.convRepo.GetConversation(c.Request.Context(), conversationID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrConversationNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "conversation not found"})
		return
	}
	if !conv.HasParticipant(userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a conversation participant"})
		return
	}
	if req.ReceiverID != conv.OtherParticipant(userID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "receiver is not the other conversation participant"})
		return
	}

	ctx, span := otel.Tracer("messaging-service/handlers").Start(c.Request.Context(), "message.send",
		trace.WithAttributes(attribute.String("conversation.id", conversationID)))
	defer span.End()

	msg, err := h.msgRepo.CreateMessage(ctx, conversationID, userID, req.ReceiverID, content)
	if err != nil {
		h.emitAudit(c, "ERROR", "message persist failed step=persist", conversationID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send message"})
		return
	}
	observability.IncMessageSent()

	// The message is durable at this point. A notification failure is
	// surfaced to operators, not to the caller.
	if err := h.notifier.NotifyMessage(ctx, req.ReceiverID, principalNameFromContext(c), conversationID, content); err != nil {
		observability.IncPipelineInconsistency("notify")
		h.emitAudit(c, "ERROR", fmt.Sprintf("message persisted without notification message_id=%s step=notify", msg.ID), conversationID)
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     msg,
		"sender_name": principalNameFromContext(c),
	})
}

func (h *ConversationHandler) emitAudit(c *gin.Context, level, text, conversationID string) {
	h.audit.EmitConversation(c.Request.Context(), level, text, conversationID, requestIDFromContext(c), auditUserID(c))
}
