package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/talentia-hr/vacaciones-api/internal/models"
)

type countingObserver struct {
	rejections int
}

func (c *countingObserver) ObserveRateLimitRejection() { c.rejections++ }

func performRateLimited(t *testing.T, client *redis.Client, observer rateLimitObserver) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	_, router := gin.CreateTestContext(recorder)

	limiter := RateLimit(client, RateLimitConfig{Requests: 5, Window: time.Hour}, observer, zap.NewNop())
	router.POST("/vacaciones", func(c *gin.Context) {
		c.Set(claimsContextKey, &models.JWTClaims{UserID: "u1", Role: models.RoleEmpleado})
		c.Next()
	}, limiter, func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodPost, "/vacaciones", nil)
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestRateLimitFailsOpenWhenRedisUnavailable(t *testing.T) {
	// Nothing listens on this port, so INCR fails immediately.
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
	})
	defer func() { _ = client.Close() }()

	observer := &countingObserver{}
	rec := performRateLimited(t, client, observer)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Zero(t, observer.rejections)
}

func TestRateLimitRequiresClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	_, router := gin.CreateTestContext(recorder)

	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond})
	defer func() { _ = client.Close() }()

	router.POST("/vacaciones", RateLimit(client, RateLimitConfig{}, nil, zap.NewNop()), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodPost, "/vacaciones", nil)
	router.ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}
