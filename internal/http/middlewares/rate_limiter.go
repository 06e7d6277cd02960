package middleware

import (
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"worktracker.com/worktracker/internal/clock"
	apperrors "worktracker.com/worktracker/internal/errors"
)

// RateLimiter allows limit requests per client IP in each fixed window.
func RateLimiter(limit int, window time.Duration, c clock.Clock) echo.MiddlewareFunc {
	type bucket struct {
		count int
		start time.Time
	}

	var (
		mu      sync.Mutex
		buckets = make(map[string]*bucket)
	)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			now := c.Now()
			key := ctx.RealIP()

			mu.Lock()
			b, ok := buckets[key]
			if !ok || now.Sub(b.start) > window {
				b = &bucket{start: now}
				buckets[key] = b
			}

			if b.count >= limit {
				mu.Unlock()
				return apperrors.ErrRateLimited
			}

			b.count++
			mu.Unlock()

			return next(ctx)
		}
	}
}
