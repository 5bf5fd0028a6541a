package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiterGroups(t *testing.T) {
	l := NewRateLimiter(0, 0)
	l.SetLimit(GroupTables, 1, 1)

	assert.True(t, l.Allow(GroupTables))
	assert.False(t, l.Allow(GroupTables))

	for i := 0; i < 100; i++ {
		assert.True(t, l.Allow(GroupDefault), "qps 0 means unlimited")
	}
	assert.True(t, l.Allow("unknown"), "unknown groups use default")
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	l := NewRateLimiter(0, 0)
	l.SetLimit(GroupTables, 1, 1)

	r := gin.New()
	r.Use(l.Middleware())
	r.GET("/api/v1/tables", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	do := func(path string) int {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w.Code
	}

	assert.Equal(t, http.StatusOK, do("/api/v1/tables"))
	assert.Equal(t, http.StatusTooManyRequests, do("/api/v1/tables"))
	assert.Equal(t, http.StatusOK, do("/health"))
}

func TestGroupByPath(t *testing.T) {
	assert.Equal(t, GroupTables, groupByPath("/api/v1/tables/users"))
	assert.Equal(t, GroupDefault, groupByPath("/api/v1/stats"))
}
