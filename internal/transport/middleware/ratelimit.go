package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/frahmantamala/employee-portal/internal"
	"github.com/frahmantamala/employee-portal/internal/transport"
)

// RateLimiter counts requests per client IP in redis and blocks offenders for blockDuration.
// Redis errors let the request through.
func RateLimiter(rdb *redis.Client, limit int, window, blockDuration time.Duration, keyPrefix string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if rdb == nil || limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			key := keyPrefix + ":ip:" + transport.ClientIP(r)
			blockKey := key + ":blocked"

			if blocked, _ := rdb.Get(ctx, blockKey).Result(); blocked == "1" {
				ttl, _ := rdb.TTL(ctx, blockKey).Result()
				tooManyRequests(w, ttl)
				return
			}

			count, err := hit(ctx, rdb, key, window)
			if err != nil {
				logger.Warn("rate limiter unavailable", "key", key, "error", err)
				next.ServeHTTP(w, r)
				return
			}

			if count > int64(limit) {
				if err := rdb.Set(ctx, blockKey, "1", blockDuration).Err(); err != nil {
					logger.Warn("failed to block client", "key", blockKey, "error", err)
				}
				logger.Warn("rate limit exceeded", "key", key, "count", count)
				tooManyRequests(w, blockDuration)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(limit-int(count)))

			next.ServeHTTP(w, r)
		})
	}
}

// hit bumps the window counter. A counter left without a TTL, whether new or from an
// earlier failed EXPIRE, gets one on the next hit so it cannot block forever.
func hit(ctx context.Context, rdb *redis.Client, key string, window time.Duration) (int64, error) {
	pipe := rdb.Pipeline()
	incr := pipe.Incr(ctx, key)
	ttl := pipe.TTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	if ttl.Val() < 0 {
		if err := rdb.Expire(ctx, key, window).Err(); err != nil {
			return 0, fmt.Errorf("expire %s: %w", key, err)
		}
	}
	return incr.Val(), nil
}

func tooManyRequests(w http.ResponseWriter, retryAfter time.Duration) {
	appErr := internal.NewTooManyRequestsError("too many requests, try again in " + retryAfter.Round(time.Second).String())
	status, body := appErr.ToHTTPResponse()
	w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
