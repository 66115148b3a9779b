package middleware

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Sliding window over a sorted set. An INCR counter keeps members unique
// when two requests land on the same millisecond.
var slidingWindow = redis.NewScript(`
	local key = KEYS[1]
	local now = tonumber(ARGV[1])
	local window_start = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local window_ms = tonumber(ARGV[4])

	redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)

	local current = redis.call('ZCARD', key)

	if current < limit then
		local counter = redis.call('INCR', key .. ':counter')
		redis.call('ZADD', key, now, now .. ':' .. counter)
		redis.call('PEXPIRE', key, window_ms)
		redis.call('PEXPIRE', key .. ':counter', window_ms)
		return 1
	end

	return 0
`)

// RateLimit throttles per client IP. With no REDIS_URL configured it is a
// no-op, so local development needs no redis. Redis errors fail open.
func RateLimit(limit int, window time.Duration) gin.HandlerFunc {
	redisURL := os.Getenv("REDIS_URL")

	if redisURL == "" {
		return func(ctx *gin.Context) {
			ctx.Next()
		}
	}

	opts, err := redis.ParseURL(redisURL)

	if err != nil {
		log.Printf("Invalid REDIS_URL, rate limiting disabled: %v", err)
		return func(ctx *gin.Context) {
			ctx.Next()
		}
	}

	client := redis.NewClient(opts)

	return func(ctx *gin.Context) {
		now := time.Now()
		key := "ratelimit:" + ctx.ClientIP()

		allowed, err := slidingWindow.Run(ctx.Request.Context(), client,
			[]string{key},
			now.UnixMilli(),
			now.Add(-window).UnixMilli(),
			limit,
			window.Milliseconds(),
		).Int()

		if err != nil {
			log.Printf("Rate limit check failed: %v", err)
			ctx.Next()
			return
		}

		if allowed == 0 {
			ctx.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			return
		}

		ctx.Next()
	}
}
