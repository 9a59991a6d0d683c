package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messaging-service/internal/mocks"
	"messaging-service/internal/models"
	"messaging-service/internal/repositories"
)

const testNotificationID = "9d4a2c11-6a0b-4f3d-bb1e-7c8f0a2d3e44"

func setupNotificationRouter(handler *NotificationHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", "user-a")
		c.Next()
	})
	r.GET("/notifications", handler.ListNotifications)
	r.GET("/notifications/unread-count", handler.UnreadNotificationCount)
	r.POST("/notifications/:notification_id/read", handler.MarkNotificationRead)
	r.POST("/notifications/read-all", handler.MarkAllNotificationsRead)
	r.POST("/internal/events/project", handler.ProjectEvent)
	return r
}

func TestListNotificationsSuccess(t *testing.T) {
	notifRepo := new(mocks.NotificationRepositoryMock)
	unreadCache := new(mocks.UnreadCacheMock)
	handler := NewNotificationHandler(notifRepo, testNotifier(notifRepo, unreadCache), unreadCache, testAuditEmitter())
	router := setupNotificationRouter(handler)

	notifRepo.On("ListByUser", mock.Anything, "user-a", 1, 20, (*bool)(nil)).
		Return([]models.Notification{{ID: testNotificationID, UserID: "user-a", Type: models.NotifMessage, Title: "New message"}}, 1, nil).Once()
	unreadCache.On("Get", mock.Anything, "user-a").Return(0, false).Once()
	notifRepo.On("CountUnread", mock.Anything, "user-a").Return(2, nil).Once()
	unreadCache.On("Set", mock.Anything, "user-a", 2).Once()

	req := httptest.NewRequest(http.MethodGet, "/notifications", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.EqualValues(t, 2, resp["unread_count"])
	notifRepo.AssertExpectations(t)
	unreadCache.AssertExpectations(t)
}

func TestListNotificationsReadFilter(t *testing.T) {
	notifRepo := new(mocks.NotificationRepositoryMock)
	unreadCache := new(mocks.UnreadCacheMock)
	handler := NewNotificationHandler(notifRepo, testNotifier(notifRepo, unreadCache), unreadCache, testAuditEmitter())
	router := setupNotificationRouter(handler)

	unread := false
	notifRepo.On("ListByUser", mock.Anything, "user-a", 1, 20, &unread).
		Return([]models.Notification{}, 0, nil).Once()
	// Unread count stays filter-independent.
	unreadCache.On("Get", mock.Anything, "user-a").Return(4, true).Once()

	req := httptest.NewRequest(http.MethodGet, "/notifications?read=false", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.EqualValues(t, 4, resp["unread_count"])
	notifRepo.AssertExpectations(t)
}

func TestListNotificationsBadFilter(t *testing.T) {
	notifRepo := new(mocks.NotificationRepositoryMock)
	unreadCache := new(mocks.UnreadCacheMock)
	handler := NewNotificationHandler(notifRepo, testNotifier(notifRepo, unreadCache), unreadCache, testAuditEmitter())
	router := setupNotificationRouter(handler)

	req := httptest.NewRequest(http.MethodGet, "/notifications?read=maybe", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	notifRepo.AssertNotCalled(t, "ListByUser", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUnreadNotificationCountCached(t *testing.T) {
	notifRepo := new(mocks.NotificationRepositoryMock)
	unreadCache := new(mocks.UnreadCacheMock)
	handler := NewNotificationHandler(notifRepo, testNotifier(notifRepo, unreadCache), unreadCache, testAuditEmitter())
	router := setupNotificationRouter(handler)

	unreadCache.On("Get", mock.Anything, "user-a").Return(5, true).Once()

	req := httptest.NewRequest(http.MethodGet, "/notifications/unread-count", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	notifRepo.AssertNotCalled(t, "CountUnread", mock.Anything, mock.Anything)
	unreadCache.AssertExpectations(t)
}

func TestMarkNotificationReadSuccess(t *testing.T) {
	notifRepo := new(mocks.NotificationRepositoryMock)
	unreadCache := new(mocks.UnreadCacheMock)
	handler := NewNotificationHandler(notifRepo, testNotifier(notifRepo, unreadCache), unreadCache, testAuditEmitter())
	router := setupNotificationRouter(handler)

	notifRepo.On("MarkRead", mock.Anything, "user-a", testNotificationID).Return(nil).Once()
	unreadCache.On("Invalidate", mock.Anything, "user-a").Once()

	req := httptest.NewRequest(http.MethodPost, "/notifications/"+testNotificationID+"/read", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	notifRepo.AssertExpectations(t)
	unreadCache.AssertExpectations(t)
}

func TestMarkNotificationReadForeignIsNotFound(t *testing.T) {
	notifRepo := new(mocks.NotificationRepositoryMock)
	unreadCache := new(mocks.UnreadCacheMock)
	handler := NewNotificationHandler(notifRepo, testNotifier(notifRepo, unreadCache), unreadCache, testAuditEmitter())
	router := setupNotificationRouter(handler)

	notifRepo.On("MarkRead", mock.Anything, "user-a", testNotificationID).
		Return(repositories.ErrNotificationNotFound).Once()

	req := httptest.NewRequest(http.MethodPost, "/notifications/"+testNotificationID+"/read", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	notifRepo.AssertExpectations(t)
}

func TestMarkAllNotificationsRead(t *testing.T) {
	notifRepo := new(mocks.NotificationRepositoryMock)
	unreadCache := new(mocks.UnreadCacheMock)
	handler := NewNotificationHandler(notifRepo, testNotifier(notifRepo, unreadCache), unreadCache, testAuditEmitter())
	router := setupNotificationRouter(handler)

	notifRepo.On("MarkAllRead", mock.Anything, "user-a").Return(nil).Twice()
	unreadCache.On("Invalidate", mock.Anything, "user-a").Twice()

	// Idempotent: the second call succeeds identically.
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/notifications/read-all", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	notifRepo.AssertExpectations(t)
}

func TestProjectEventAssigned(t *testing.T) {
	notifRepo := new(mocks.NotificationRepositoryMock)
	unreadCache := new(mocks.UnreadCacheMock)
	handler := NewNotificationHandler(notifRepo, testNotifier(notifRepo, unreadCache), unreadCache, testAuditEmitter())
	router := setupNotificationRouter(handler)

	notifRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Notification")).
		Run(func(args mock.Arguments) {
			notif := args.Get(1).(*models.Notification)
			assert.Equal(t, models.NotifProjectAssigned, notif.Type)
			assert.Equal(t, "project-7", notif.RelatedID)
			assert.Equal(t, models.RelatedProject, notif.RelatedKind)
		}).Return(nil).Once()
	unreadCache.On("Invalidate", mock.Anything, "user-b").Once()

	body := bytes.NewBufferString(`{"type":"project_assigned","user_id":"user-b","project_id":"project-7","title":"Project assigned","message":"You were assigned to project 7"}`)
	req := httptest.NewRequest(http.MethodPost, "/internal/events/project", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	notifRepo.AssertExpectations(t)
}

func TestProjectEventMissingTitleIsDropped(t *testing.T) {
	notifRepo := new(mocks.NotificationRepositoryMock)
	unreadCache := new(mocks.UnreadCacheMock)
	handler := NewNotificationHandler(notifRepo, testNotifier(notifRepo, unreadCache), unreadCache, testAuditEmitter())
	router := setupNotificationRouter(handler)

	body := bytes.NewBufferString(`{"type":"project_status","user_id":"user-b","project_id":"project-7"}`)
	req := httptest.NewRequest(http.MethodPost, "/internal/events/project", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	notifRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProjectEventUnknownTypeIsDropped(t *testing.T) {
	notifRepo := new(mocks.NotificationRepositoryMock)
	unreadCache := new(mocks.UnreadCacheMock)
	handler := NewNotificationHandler(notifRepo, testNotifier(notifRepo, unreadCache), unreadCache, testAuditEmitter())
	router := setupNotificationRouter(handler)

	body := bytes.NewBufferString(`{"type":"project_deleted","user_id":"user-b","project_id":"project-7","title":"gone"}`)
	req := httptest.NewRequest(http.MethodPost, "/internal/events/project", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	notifRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
