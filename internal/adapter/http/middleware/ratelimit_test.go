package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ipn-relay/internal/adapter/http/middleware"
	redisStore "ipn-relay/internal/adapter/storage/redis"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func setupRateLimitRouter(store middleware.RateLimitStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	rule := middleware.RateLimitRule{Limit: 3, Window: time.Minute}
	r.POST("/ipn", middleware.RateLimiter(store, "ipn", rule, zerolog.Nop()), func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "success"})
	})
	return r
}

func newRedisRateLimitStore(t *testing.T) *redisStore.RateLimitStore {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return redisStore.NewRateLimitStore(client, "test:")
}

func post(router *gin.Engine, remoteAddr string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/ipn", nil)
	req.RemoteAddr = remoteAddr
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_AllowsWithinLimit(t *testing.T) {
	router := setupRateLimitRouter(newRedisRateLimitStore(t))

	for i := 0; i < 3; i++ {
		w := post(router, "203.0.113.7:4000")
		assert.Equal(t, 200, w.Code, "request %d should succeed", i+1)
		assert.Equal(t, "3", w.Header().Get("X-RateLimit-Limit"))
		assert.NotEmpty(t, w.Header().Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, w.Header().Get("X-RateLimit-Reset"))
	}
}

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	router := setupRateLimitRouter(newRedisRateLimitStore(t))

	for i := 0; i < 3; i++ {
		assert.Equal(t, 200, post(router, "203.0.113.7:4000").Code)
	}

	w := post(router, "203.0.113.7:4000")
	assert.Equal(t, 429, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "RATE_001")
}

func TestRateLimiter_PerClientIP(t *testing.T) {
	router := setupRateLimitRouter(newRedisRateLimitStore(t))

	for i := 0; i < 3; i++ {
		assert.Equal(t, 200, post(router, "203.0.113.7:4000").Code)
	}

	// A different source still has its own budget.
	assert.Equal(t, 200, post(router, "198.51.100.9:4000").Code)
}

type failingStore struct{}

func (failingStore) Allow(context.Context, string, int64, time.Duration) (*redisStore.RateLimitResult, error) {
	return nil, errors.New("redis down")
}

func TestRateLimiter_StoreErrorAllows(t *testing.T) {
	router := setupRateLimitRouter(failingStore{})

	w := post(router, "203.0.113.7:4000")
	assert.Equal(t, 200, w.Code)
	assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
}
