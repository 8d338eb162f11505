package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"fridge2food/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimiter 限流器結構（令牌桶）
type RateLimiter struct {
	mu       sync.Mutex
	tokens   int
	capacity int
	rate     float64
	lastTime time.Time
}

// NewRateLimiter 創建新的限流器
func NewRateLimiter(requests int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		tokens:   requests,
		capacity: requests,
		rate:     float64(requests) / window.Seconds(),
		lastTime: time.Now(),
	}
}

// Allow 檢查是否允許請求
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(rl.lastTime).Seconds()

	// 添加新令牌，不足一個時保留經過的時間
	if newTokens := int(elapsed * rl.rate); newTokens > 0 {
		rl.tokens = min(rl.capacity, rl.tokens+newTokens)
		rl.lastTime = now
	}

	// 檢查是否有可用令牌
	if rl.tokens > 0 {
		rl.tokens--
		return true
	}

	return false
}

// clientLimiters 以用戶端 IP 區分的限流器
type clientLimiters struct {
	mu       sync.Mutex
	requests int
	window   time.Duration
	limiters map[string]*clientLimiter
}

type clientLimiter struct {
	limiter  *RateLimiter
	lastSeen time.Time
}

func (cl *clientLimiters) get(ip string) *RateLimiter {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	now := time.Now()
	entry, ok := cl.limiters[ip]
	if !ok {
		// 順便清掉閒置超過兩個視窗的用戶端
		for key, e := range cl.limiters {
			if now.Sub(e.lastSeen) > 2*cl.window {
				delete(cl.limiters, key)
			}
		}
		entry = &clientLimiter{limiter: NewRateLimiter(cl.requests, cl.window)}
		cl.limiters[ip] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

// RateLimit 限流中間件，每個用戶端 IP 各自計算
func RateLimit(requests int, window time.Duration) gin.HandlerFunc {
	limiters := &clientLimiters{
		requests: requests,
		window:   window,
		limiters: make(map[string]*clientLimiter),
	}

	return func(c *gin.Context) {
		if !limiters.get(c.ClientIP()).Allow() {
			common.LogInfo("Rate limit exceeded",
				zap.String("ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
			)

			c.Header("Retry-After", fmt.Sprintf("%d", int(window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": common.ErrTooManyRequests.Response(false),
			})
			return
		}

		c.Next()
	}
}
