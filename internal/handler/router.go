package handler

import (
	"net/http"

	"tabledump/internal/middleware"

	"github.com/gin-gonic/gin"
)

// NewRouter 注册全部路由；limiter、breaker为nil时不启用
func NewRouter(tableHandler *TableHandler, limiter *middleware.RateLimiter, breaker *middleware.CircuitBreaker) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if limiter != nil {
		r.Use(limiter.Middleware())
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := r.Group("/api/v1")
	if breaker != nil {
		apiGroup.Use(breaker.Middleware())
	}
	{
		apiGroup.GET("/tables", tableHandler.ListTables)
		apiGroup.GET("/tables/:name", tableHandler.GetTable)
		apiGroup.GET("/stats", tableHandler.Stats)
	}

	return r
}
