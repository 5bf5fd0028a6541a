package middleware

import (
	"net/http"
	"sync"
	"time"

	"tabledump/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// CircuitState 熔断器状态
type CircuitState int

const (
	StateClosed   CircuitState = iota // 正常
	StateOpen                         // 熔断
	StateHalfOpen                     // 探测
)

func (s CircuitState) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// CircuitBreaker 连续失败达到阈值后熔断，超时后放行一个探测请求
// 数据库文件被锁或损坏时，避免每个请求都去扫描
type CircuitBreaker struct {
	mu               sync.Mutex
	failureThreshold int
	openTimeout      time.Duration
	state            CircuitState
	consecutiveFails int
	openedAt         time.Time
	probing          bool
	now              func() time.Time
}

// NewCircuitBreaker failureThreshold<=0 时不熔断
func NewCircuitBreaker(failureThreshold int, openTimeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		failureThreshold: failureThreshold,
		openTimeout:      openTimeout,
		state:            StateClosed,
		now:              time.Now,
	}
}

// Allow 是否放行请求
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateOpen:
		if cb.now().Sub(cb.openedAt) < cb.openTimeout {
			return false
		}
		cb.state = StateHalfOpen
		cb.probing = true
		logrus.Infof("[CircuitBreaker] changed to %s state", cb.state)
		return true
	case StateHalfOpen:
		if cb.probing {
			return false
		}
		cb.probing = true
		return true
	default:
		return true
	}
}

// Record 记录请求结果
func (cb *CircuitBreaker) Record(success bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.probing = false
	if success {
		if cb.state != StateClosed {
			logrus.Infof("[CircuitBreaker] recovered to %s state", StateClosed)
		}
		cb.state = StateClosed
		cb.consecutiveFails = 0
		return
	}

	cb.consecutiveFails++
	if cb.state == StateHalfOpen || (cb.failureThreshold > 0 && cb.consecutiveFails >= cb.failureThreshold) {
		if cb.state != StateOpen {
			logrus.Warnf("[CircuitBreaker] tripped to %s state after %d failures", StateOpen, cb.consecutiveFails)
		}
		cb.state = StateOpen
		cb.openedAt = cb.now()
	}
}

// State 当前状态
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Middleware 熔断中间件：5xx和panic视为失败，熔断期间返回503
func (cb *CircuitBreaker) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cb.Allow() {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable,
				common.NewErrorResponse(http.StatusServiceUnavailable, "Service Unavailable - circuit breaker is open"))
			return
		}
		success := false
		// panic时success保持false，交给外层Recovery处理
		defer func() { cb.Record(success) }()
		c.Next()
		success = c.Writer.Status() < http.StatusInternalServerError
	}
}
