package middlewares

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

var (
	limiters = make(map[string]*rate.Limiter)
	mu       sync.Mutex
)

// getLimiter keys buckets by client and budget, so a client hitting both the
// public and the admin group draws from two separate buckets.
func getLimiter(key string, r rate.Limit, b int) *rate.Limiter {
	bucket := fmt.Sprintf("%s|%g|%d", key, float64(r), b)

	mu.Lock()
	defer mu.Unlock()

	limiter, exists := limiters[bucket]
	if !exists {
		limiter = rate.NewLimiter(r, b)
		limiters[bucket] = limiter
	}
	return limiter
}

func RateLimitMiddleware(r rate.Limit, b int, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	retryAfter := "1"
	if r > 0 && r < 1 {
		retryAfter = strconv.Itoa(int(math.Ceil(1 / float64(r))))
	}

	return func(c *gin.Context) {
		limiter := getLimiter(keyFunc(c), r, b)

		if !limiter.Allow() {
			c.Header("Retry-After", retryAfter)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Please slow down :("})
			return
		}

		c.Next()
	}
}
