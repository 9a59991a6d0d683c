package notify

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messaging-service/internal/mocks"
	"messaging-service/internal/models"
)

func TestTruncatePreview(t *testing.T) {
	assert.Equal(t, "hi", TruncatePreview("hi"))

	exact := strings.Repeat("a", 60)
	assert.Equal(t, exact, TruncatePreview(exact))

	long := strings.Repeat("a", 61)
	assert.Equal(t, strings.Repeat("a", 60)+"…", TruncatePreview(long))

	// Rune-safe for multibyte content.
	multibyte := strings.Repeat("ä", 61)
	truncated := TruncatePreview(multibyte)
	assert.Equal(t, strings.Repeat("ä", 60)+"…", truncated)
}

func TestCreateDropsIncompleteNotifications(t *testing.T) {
	repo := new(mocks.NotificationRepositoryMock)
	unreadCache := new(mocks.UnreadCacheMock)
	notifier := NewNotifier(repo, unreadCache)

	require.NoError(t, notifier.Create(context.Background(), models.Notification{Type: models.NotifMessage, Title: "t"}))
	require.NoError(t, notifier.Create(context.Background(), models.Notification{UserID: "u", Title: "t"}))
	require.NoError(t, notifier.Create(context.Background(), models.Notification{UserID: "u", Type: models.NotifMessage}))

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestNotifyMessageBuildsPreview(t *testing.T) {
	repo := new(mocks.NotificationRepositoryMock)
	unreadCache := new(mocks.UnreadCacheMock)
	notifier := NewNotifier(repo, unreadCache)

	repo.On("Create", mock.Anything, mock.AnythingOfType("*models.Notification")).
		Run(func(args mock.Arguments) {
			notif := args.Get(1).(*models.Notification)
			assert.Equal(t, "New message", notif.Title)
			assert.Equal(t, "Bob: "+strings.Repeat("x", 60)+"…", notif.Message)
			assert.Equal(t, "/conversations/conv-1", notif.Link)
			assert.Equal(t, models.RelatedConversation, notif.RelatedKind)
		}).Return(nil).Once()
	unreadCache.On("Invalidate", mock.Anything, "user-b").Once()

	err := notifier.NotifyMessage(context.Background(), "user-b", "Bob", "conv-1", strings.Repeat("x", 80))
	require.NoError(t, err)
	repo.AssertExpectations(t)
	unreadCache.AssertExpectations(t)
}

func TestNotifyProjectEventRejectsForeignTypes(t *testing.T) {
	repo := new(mocks.NotificationRepositoryMock)
	unreadCache := new(mocks.UnreadCacheMock)
	notifier := NewNotifier(repo, unreadCache)

	err := notifier.NotifyProjectEvent(context.Background(), models.NotifMessage, "user-b", "project-1", "t", "m")
	require.NoError(t, err)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
