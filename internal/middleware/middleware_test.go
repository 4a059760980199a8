package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/club_management_app/internal/core/domain"
	"github.com/SscSPs/club_management_app/internal/middleware"
	"github.com/SscSPs/club_management_app/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-that-is-long-enough"

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.AuthMiddleware(testSecret))
	r.GET("/dues", middleware.RequireCapability(domain.CapManageDues), func(c *gin.Context) {
		userID, _ := middleware.GetUserIDFromContext(c)
		c.String(http.StatusOK, userID)
	})
	return r
}

func request(t *testing.T, r *gin.Engine, token string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, "/dues", nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthAndCapability(t *testing.T) {
	r := newRouter()

	treasurer, err := utils.GenerateJWT("user-t", domain.RoleTreasurer, testSecret, time.Hour, "club-test")
	require.NoError(t, err)
	coach, err := utils.GenerateJWT("user-c", domain.RoleCoach, testSecret, time.Hour, "club-test")
	require.NoError(t, err)
	unknownRole, err := utils.GenerateJWT("user-x", domain.Role("OWNER"), testSecret, time.Hour, "club-test")
	require.NoError(t, err)

	w := request(t, r, treasurer)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-t", w.Body.String())

	assert.Equal(t, http.StatusForbidden, request(t, r, coach).Code)
	assert.Equal(t, http.StatusUnauthorized, request(t, r, unknownRole).Code)
	assert.Equal(t, http.StatusUnauthorized, request(t, r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, request(t, r, "not-a-jwt").Code)
}

func TestRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	lim, err := middleware.NewMemoryLimiter("2-M")
	require.NoError(t, err)

	r := gin.New()
	r.POST("/webhooks/stripe", middleware.RateLimit(lim), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPost, "/webhooks/stripe", nil)
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestGetLoggerFromCtx_FallsBackToDefault(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.NotNil(t, middleware.GetLoggerFromCtx(req.Context()))
}

type countingAnalytics struct {
	names []string
	roles []any
}

func (a *countingAnalytics) IsInitialized() bool { return true }

func (a *countingAnalytics) Enqueue(_ string, event string, properties map[string]any) {
	a.names = append(a.names, event)
	a.roles = append(a.roles, properties["role"])
}

func TestPosthogMiddleware_TagsRoleAndSkipsFailures(t *testing.T) {
	gin.SetMode(gin.TestMode)
	analytics := &countingAnalytics{}
	r := gin.New()
	r.Use(middleware.PosthogMiddleware(analytics), middleware.AuthMiddleware(testSecret))
	r.GET("/dues", func(c *gin.Context) {
		middleware.TrackEvent(c, middleware.EventDuesExported, map[string]any{"rows": 3})
		c.Status(http.StatusOK)
	})
	r.GET("/broken", func(c *gin.Context) { c.Status(http.StatusBadGateway) })

	tok, err := utils.GenerateJWT("user-t", domain.RoleTreasurer, testSecret, time.Hour, "club-test")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, request(t, r, tok).Code)
	assert.Equal(t, []string{middleware.EventDuesExported, "dues"}, analytics.names)
	assert.Equal(t, []any{string(domain.RoleTreasurer), string(domain.RoleTreasurer)}, analytics.roles)

	req := httptest.NewRequest(http.MethodGet, "/broken", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	r.ServeHTTP(httptest.NewRecorder(), req)
	assert.Len(t, analytics.names, 2)
}

func TestTrackEvent_NoopWithoutAnalytics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/dues/export", nil)
	assert.NotPanics(t, func() {
		middleware.TrackEvent(c, middleware.EventDuesExported, nil)
	})
}
