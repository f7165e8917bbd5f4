package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/octobees/leads-scraper/internal/config"
)

// ScrapeRateLimiter applies a token bucket per caller to the routes it wraps.
// Callers are keyed by user id once authenticated, otherwise by client IP.
func ScrapeRateLimiter(cfg config.RateLimitConfig) echo.MiddlewareFunc {
	if cfg.Requests <= 0 || cfg.Interval <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}

	perRequest := cfg.Interval / time.Duration(cfg.Requests)
	if perRequest <= 0 {
		perRequest = time.Second
	}

	var mu sync.Mutex
	limiters := make(map[string]*rate.Limiter)
	limiterFor := func(key string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		l, ok := limiters[key]
		if !ok {
			l = rate.NewLimiter(rate.Every(perRequest), cfg.Requests)
			limiters[key] = l
		}
		return l
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.RealIP()
			if id, ok := UserIDFromContext(c); ok {
				key = id.String()
			}
			if !limiterFor(key).Allow() {
				return deny(c, http.StatusTooManyRequests, "scrape rate limit exceeded")
			}
			return next(c)
		}
	}
}
