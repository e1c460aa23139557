package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fintrack-service/pkg/response"

	"github.com/redis/go-redis/v9"
)

// RateLimiter throttles per principal (falling back to client IP) using a
// fixed redis counter window; offenders are blocked for blockDuration.
func RateLimiter(rdb *redis.Client, limit int, window, blockDuration time.Duration, keyPrefix string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.Background()

			// Prefer userID if authenticated
			var clientID string
			if userID, ok := GetUserID(r.Context()); ok {
				clientID = "uid:" + strconv.FormatInt(userID, 10)
			} else {
				// Fallback: IP (check proxy headers first)
				ip := r.Header.Get("X-Forwarded-For")
				if ip == "" {
					ip = r.RemoteAddr
				}
				clientID = "ip:" + strings.Split(ip, ",")[0]
			}

			key := keyPrefix + ":" + clientID
			blockKey := key + ":blocked"

			// Check if already blocked
			blocked, _ := rdb.Get(ctx, blockKey).Result()
			if blocked == "1" {
				ttl, _ := rdb.TTL(ctx, blockKey).Result()
				w.Header().Set("Retry-After", strconv.Itoa(int(ttl.Seconds())))
				response.Error(w, http.StatusTooManyRequests, "Too Many Requests. Try again in "+ttl.String())
				return
			}

			// Increment counter
			count, err := rdb.Incr(ctx, key).Result()
			if err != nil {
				// Fail open: don't block traffic if redis is unavailable
				next.ServeHTTP(w, r)
				return
			}

			// First request in window sets the expiry
			if count == 1 {
				rdb.Expire(ctx, key, window)
			}

			// Over the limit: block
			if count > int64(limit) {
				rdb.Set(ctx, blockKey, "1", blockDuration)
				w.Header().Set("Retry-After", strconv.Itoa(int(blockDuration.Seconds())))
				response.Error(w, http.StatusTooManyRequests, "Too Many Requests. Try again in "+blockDuration.String())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
