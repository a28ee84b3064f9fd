package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

const MsgRateLimited = "Rate limit exceeded. Please try again later."

// RateLimiter is a per-IP token bucket.
type RateLimiter struct {
	tokens         map[string]float64
	lastRefill     map[string]time.Time
	mu             sync.Mutex
	rate           float64 // tokens per second
	bucketSize     float64 // maximum tokens
	refillInterval time.Duration
	now            func() time.Time
	onLimit        gin.HandlerFunc
}

func NewRateLimiter(rate float64, bucketSize float64) *RateLimiter {
	return &RateLimiter{
		tokens:         make(map[string]float64),
		lastRefill:     make(map[string]time.Time),
		rate:           rate,
		bucketSize:     bucketSize,
		refillInterval: time.Second,
		now:            time.Now,
	}
}

// OnLimit replaces the default JSON 429 response for non-API requests.
func (rl *RateLimiter) OnLimit(h gin.HandlerFunc) *RateLimiter {
	rl.onLimit = h
	return rl
}

// Allow takes one token from key's bucket if one is available.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if _, exists := rl.lastRefill[key]; !exists {
		rl.tokens[key] = rl.bucketSize
		rl.lastRefill[key] = now
	}

	elapsed := now.Sub(rl.lastRefill[key])
	newTokens := float64(elapsed) / float64(rl.refillInterval) * rl.rate
	rl.tokens[key] = min(rl.bucketSize, rl.tokens[key]+newTokens)
	rl.lastRefill[key] = now

	if rl.tokens[key] < 1 {
		return false
	}
	rl.tokens[key]--
	return true
}

// Cleanup forgets buckets untouched for longer than idle; they would be full again.
func (rl *RateLimiter) Cleanup(idle time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key, last := range rl.lastRefill {
		if now.Sub(last) > idle {
			delete(rl.lastRefill, key)
			delete(rl.tokens, key)
		}
	}
}

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.Allow(c.ClientIP()) {
			c.Next()
			return
		}

		if rl.onLimit != nil && !IsAPI(c) {
			c.Status(http.StatusTooManyRequests)
			rl.onLimit(c)
			c.Abort()
			return
		}
		c.JSON(http.StatusTooManyRequests, gin.H{"error": MsgRateLimited})
		c.Abort()
	}
}
