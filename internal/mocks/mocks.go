package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"messaging-service/internal/cache"
	"messaging-service/internal/models"
	"messaging-service/internal/repositories"
)

type ConversationRepositoryMock struct {
	mock.Mock
}

func (m *ConversationRepositoryMock) CreateOrGet(ctx context.Context, userID, otherID, projectID string) (models.Conversation, error) {
	args := m.Called(ctx, userID, otherID, projectID)
	var conv models.Conversation
	if val := args.Get(0); val != nil {
		conv = val.(models.Conversation)
	}
	return conv, args.Error(1)
}

func (m *ConversationRepositoryMock) GetConversation(ctx context.Context, conversationID string) (models.Conversation, error) {
	args := m.Called(ctx, conversationID)
	var conv models.Conversation
	if val := args.Get(0); val != nil {
		conv = val.(models.Conversation)
	}
	return conv, args.Error(1)
}

func (m *ConversationRepositoryMock) ListConversations(ctx context.Context, userID string) ([]models.ConversationSummary, error) {
	args := m.Called(ctx, userID)
	var list []models.ConversationSummary
	if val := args.Get(0); val != nil {
		list = val.([]models.ConversationSummary)
	}
	return list, args.Error(1)
}

func (m *ConversationRepositoryMock) UnreadCounts(ctx context.Context, conversationID string) (models.UnreadCounts, error) {
	args := m.Called(ctx, conversationID)
	var counts models.UnreadCounts
	if val := args.Get(0); val != nil {
		counts = val.(models.UnreadCounts)
	}
	return counts, args.Error(1)
}

func (m *ConversationRepositoryMock) MarkRead(ctx context.Context, conversationID string, readerID string) error {
	args := m.Called(ctx, conversationID, readerID)
	return args.Error(0)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) CreateMessage(ctx context.Context, conversationID, senderID, receiverID, content string) (models.Message, error) {
	args := m.Called(ctx, conversationID, senderID, receiverID, content)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) ListMessages(ctx context.Context, conversationID string, page, limit int) ([]models.Message, int, error) {
	args := m.Called(ctx, conversationID, page, limit)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Int(1), args.Error(2)
}

type NotificationRepositoryMock struct {
	mock.Mock
}

func (m *NotificationRepositoryMock) Create(ctx context.Context, notif *models.Notification) error {
	args := m.Called(ctx, notif)
	return args.Error(0)
}

func (m *NotificationRepositoryMock) ListByUser(ctx context.Context, userID string, page, limit int, readFilter *bool) ([]models.Notification, int, error) {
	args := m.Called(ctx, userID, page, limit, readFilter)
	var notifs []models.Notification
	if val := args.Get(0); val != nil {
		notifs = val.([]models.Notification)
	}
	return notifs, args.Int(1), args.Error(2)
}

func (m *NotificationRepositoryMock) CountUnread(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *NotificationRepositoryMock) MarkRead(ctx context.Context, userID, notificationID string) error {
	args := m.Called(ctx, userID, notificationID)
	return args.Error(0)
}

func (m *NotificationRepositoryMock) MarkAllRead(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type UnreadCacheMock struct {
	mock.Mock
}

func (m *UnreadCacheMock) Get(ctx context.Context, userID string) (int, bool) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Bool(1)
}

func (m *UnreadCacheMock) Set(ctx context.Context, userID string, count int) {
	m.Called(ctx, userID, count)
}

func (m *UnreadCacheMock) Invalidate(ctx context.Context, userID string) {
	m.Called(ctx, userID)
}

var _ repositories.ConversationRepository = (*ConversationRepositoryMock)(nil)
var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ repositories.NotificationRepository = (*NotificationRepositoryMock)(nil)
var _ cache.UnreadCache = (*UnreadCacheMock)(nil)
