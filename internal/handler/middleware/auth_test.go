//go:build unit

package middleware_test

import (
	"net/http"
	"testing"
	"time"

	"keypanel/internal/handler/middleware"
	"keypanel/internal/pkg/jwt"
	"keypanel/tests/common/httptest"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

const testSecret = "test-secret"

type AuthMiddlewareTestSuite struct {
	suite.Suite
	router *gin.Engine
	tokens *jwt.Service
}

func (s *AuthMiddlewareTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	s.tokens = jwt.NewService(testSecret, time.Hour)
	authMiddleware := middleware.NewAuthMiddleware(s.tokens)

	s.router = gin.New()
	s.router.GET("/api/admin/ping", authMiddleware.RequireAdmin(), func(c *gin.Context) {
		adminID, ok := middleware.GetAdminID(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "admin context missing"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"admin_id": adminID.String()})
	})
}

func TestAuthMiddlewareSuite(t *testing.T) {
	suite.Run(t, new(AuthMiddlewareTestSuite))
}

func (s *AuthMiddlewareTestSuite) TestRequireAdmin() {
	url := "/api/admin/ping"

	s.Run("success: valid token passes claims through", func() {
		adminID := uuid.New()
		token, err := s.tokens.GenerateToken(adminID, "admin")
		s.Require().NoError(err)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, token)

		var body map[string]string
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal(adminID.String(), body["admin_id"])
	})

	s.Run("error: 401 without a token", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "Access token required")
	})

	s.Run("error: 401 for a garbage token", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "not-a-jwt")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "Invalid or expired token")
	})

	s.Run("error: 401 for an expired token", func() {
		expired := jwt.NewService(testSecret, -time.Minute)
		token, err := expired.GenerateToken(uuid.New(), "admin")
		s.Require().NoError(err)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, token)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "Invalid or expired token")
	})

	s.Run("error: 401 for a token signed with another secret", func() {
		foreign := jwt.NewService("other-secret", time.Hour)
		token, err := foreign.GenerateToken(uuid.New(), "admin")
		s.Require().NoError(err)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, token)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "Invalid or expired token")
	})
}
