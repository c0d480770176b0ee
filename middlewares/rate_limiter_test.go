package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func serve(r *gin.Engine, remoteAddr string) int {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimiterSlidingWindow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter(2, 60)
	now := time.Now()
	rl.now = func() time.Time { return now }

	r := gin.New()
	r.Use(rl.RateLimit())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, "10.0.0.1:1000"))
	assert.Equal(t, http.StatusOK, serve(r, "10.0.0.1:1000"))
	assert.Equal(t, http.StatusTooManyRequests, serve(r, "10.0.0.1:1000"))

	// other clients have their own window
	assert.Equal(t, http.StatusOK, serve(r, "10.0.0.2:1000"))

	now = now.Add(61 * time.Second)
	assert.Equal(t, http.StatusOK, serve(r, "10.0.0.1:1000"))
}

func TestStrictRateLimiterPerIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", NewStrictRateLimiter(time.Hour, 1), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, "10.0.0.1:1000"))
	assert.Equal(t, http.StatusTooManyRequests, serve(r, "10.0.0.1:1000"))
	assert.Equal(t, http.StatusOK, serve(r, "10.0.0.2:1000"))
}
