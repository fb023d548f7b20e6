package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Wakkzz12/employee-leave-tracker/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRateLimitByIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/login", middleware.RateLimitByIP(0.001, 1), func(c *gin.Context) { c.Status(http.StatusOK) })

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	r.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)

	env := decodeEnvelope(t, second)
	assert.Equal(t, "TOO_MANY_REQUESTS", env.Error.Code)
}

func TestRateLimitByUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/leaves",
		func(c *gin.Context) {
			if uid := c.GetHeader("X-Test-User"); uid != "" {
				c.Set("user_id", uid)
			}
		},
		middleware.RateLimitByUser(0.001, 1),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)

	do := func(user string) int {
		req := httptest.NewRequest(http.MethodGet, "/leaves", nil)
		if user != "" {
			req.Header.Set("X-Test-User", user)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, do("alice"))
	assert.Equal(t, http.StatusTooManyRequests, do("alice"))
	assert.Equal(t, http.StatusOK, do("bob"))

	// anonymous requests are not counted
	assert.Equal(t, http.StatusOK, do(""))
	assert.Equal(t, http.StatusOK, do(""))
}
