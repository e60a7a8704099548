package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/deifrati/api/utils"
)

type rateLimiter struct {
	limiter *rate.Limiter
	expires time.Time
}

var (
	limiters   = map[string]*rateLimiter{}
	limitersMu sync.Mutex
)

// RateLimit allows each client IP about limit requests per window on the routes it guards.
// Buckets are kept per name so separate limits on nested routes do not share tokens.
func RateLimit(name string, limit int, window time.Duration) gin.HandlerFunc {
	if limit < 1 {
		limit = 1
	}
	every := rate.Every(window / time.Duration(limit))

	return func(ctx *gin.Context) {
		limiter := getLimiter(name+":"+ctx.ClientIP(), every, limit, window)
		if !limiter.Allow() {
			ctx.Header("Retry-After", strconv.Itoa(int(window/time.Duration(limit)/time.Second)+1))
			utils.Error(ctx, http.StatusTooManyRequests, "Too many requests, please try again later.")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

func getLimiter(key string, limit rate.Limit, burst int, ttl time.Duration) *rate.Limiter {
	limitersMu.Lock()
	defer limitersMu.Unlock()

	cleanupExpiredLimitersLocked()

	if l, ok := limiters[key]; ok {
		l.expires = time.Now().Add(ttl)
		return l.limiter
	}

	l := &rateLimiter{
		limiter: rate.NewLimiter(limit, burst),
		expires: time.Now().Add(ttl),
	}
	limiters[key] = l
	return l.limiter
}

func cleanupExpiredLimitersLocked() {
	now := time.Now()
	for key, l := range limiters {
		if now.After(l.expires) {
			delete(limiters, key)
		}
	}
}
