//go:build unit

package api_test

import (
	"net/http"
	"testing"
	"time"

	"keypanel/internal/handler/api"
	"keypanel/internal/usecase/commands"
	"keypanel/internal/usecase/queries"
	"keypanel/tests/common/httptest"
	commandsmock "keypanel/tests/mock/commands"
	queriesmock "keypanel/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type NotificationHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockNotificationCommands
	mockQueries  *queriesmock.MockNotificationQueries
	handler      *api.NotificationHandler
}

func (s *NotificationHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockNotificationCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockNotificationQueries(s.mockCtrl)
	s.handler = api.NewNotificationHandler(s.mockCommands, s.mockQueries)

	// Admin auth is exercised separately; routes are mounted bare here.
	s.router.GET("/api/admin/notifications", s.handler.List)
	s.router.POST("/api/admin/notifications/:id/read", s.handler.MarkRead)
	s.router.POST("/api/admin/notifications/read-all", s.handler.MarkAllRead)
}

func (s *NotificationHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestNotificationHandlerSuite(t *testing.T) {
	suite.Run(t, new(NotificationHandlerTestSuite))
}

func (s *NotificationHandlerTestSuite) TestList() {
	views := []*queries.NotificationView{
		{
			ID:        uuid.New(),
			Type:      "order_completed",
			Title:     "Order completed",
			Message:   "Order 12345678: Order completed",
			OrderID:   "12345678",
			Read:      false,
			CreatedAt: time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC),
		},
	}

	s.Run("success: lists notifications with defaults", func() {
		s.mockQueries.EXPECT().List(gomock.Any(), false, 50).
			Return(views, nil).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/admin/notifications", nil, "")

		var body []map[string]any
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Len(body, 1)
		s.Equal("order_completed", body[0]["type"])
	})

	s.Run("success: unread filter and limit are forwarded", func() {
		s.mockQueries.EXPECT().List(gomock.Any(), true, 10).
			Return(nil, nil).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/admin/notifications?unread=true&limit=10", nil, "")
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})
}

func (s *NotificationHandlerTestSuite) TestMarkRead() {
	id := uuid.New()

	s.Run("success: returns 204", func() {
		s.mockCommands.EXPECT().MarkRead(gomock.Any(), id).
			Return(nil).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/api/admin/notifications/"+id.String()+"/read", nil, "")
		s.Equal(http.StatusNoContent, rec.Code)
	})

	s.Run("error: 400 for malformed id", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/api/admin/notifications/not-a-uuid/read", nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid notification ID")
	})

	s.Run("error: 404 for unknown notification", func() {
		s.mockCommands.EXPECT().MarkRead(gomock.Any(), id).
			Return(commands.ErrNotificationNotFound).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/api/admin/notifications/"+id.String()+"/read", nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "Notification not found")
	})
}

func (s *NotificationHandlerTestSuite) TestMarkAllRead() {
	s.Run("success: returns 204", func() {
		s.mockCommands.EXPECT().MarkAllRead(gomock.Any()).
			Return(nil).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/api/admin/notifications/read-all", nil, "")
		s.Equal(http.StatusNoContent, rec.Code)
	})
}
