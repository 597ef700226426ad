package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestBucketTTL(t *testing.T) {
	assert.Equal(t, 4*time.Second, bucketTTL(50, 100))
	assert.Equal(t, time.Second, bucketTTL(100, 1))
}

func TestCastHelpers(t *testing.T) {
	assert.EqualValues(t, 1, castToInt(int64(1)))
	assert.EqualValues(t, 2, castToInt(2))
	assert.EqualValues(t, 3, castToInt(3.9))
	assert.EqualValues(t, 0, castToInt("x"))

	assert.EqualValues(t, 1.5, castToFloat(1.5))
	assert.EqualValues(t, 4, castToFloat(int64(4)))
	assert.EqualValues(t, 2.5, castToFloat("2.5"))
	assert.EqualValues(t, 0, castToFloat("junk"))
	assert.EqualValues(t, 0, castToFloat(nil))
}

func TestMiddlewareWithoutLimiterPassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware(nil, zap.NewNop()))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}
