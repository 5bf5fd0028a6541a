package middleware

import (
	"net/http"
	"strings"
	"sync"

	"tabledump/pkg/common"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// 限流分组
const (
	GroupTables  = "tables"
	GroupDefault = "default"
)

// RateLimiter 按路由分组的令牌桶限流器
type RateLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
}

// NewRateLimiter 创建限流器，必须包含default分组
func NewRateLimiter(defaultQPS, defaultBurst int) *RateLimiter {
	l := &RateLimiter{limiters: make(map[string]*rate.Limiter)}
	l.SetLimit(GroupDefault, defaultQPS, defaultBurst)
	return l
}

// SetLimit 设置或更新分组限流；qps<=0表示不限流
func (l *RateLimiter) SetLimit(group string, qps, burst int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	limit := rate.Limit(qps)
	if qps <= 0 {
		limit = rate.Inf
	}
	if existing, ok := l.limiters[group]; ok {
		existing.SetLimit(limit)
		existing.SetBurst(burst)
		return
	}
	l.limiters[group] = rate.NewLimiter(limit, burst)
}

// Allow 检查分组是否允许请求，未知分组使用default
func (l *RateLimiter) Allow(group string) bool {
	l.mu.RLock()
	limiter, ok := l.limiters[group]
	if !ok {
		limiter = l.limiters[GroupDefault]
	}
	l.mu.RUnlock()
	return limiter.Allow()
}

// Middleware 限流中间件，超限返回429
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(groupByPath(c.Request.URL.Path)) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				common.NewErrorResponse(http.StatusTooManyRequests, "Too Many Requests - Rate limit exceeded"))
			return
		}
		c.Next()
	}
}

func groupByPath(path string) string {
	if strings.Contains(path, "/tables") {
		return GroupTables
	}
	return GroupDefault
}
