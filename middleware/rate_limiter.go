// middleware/rate_limiter.go
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

type endpointLimit struct {
	limit rate.Limit
	burst int
}

// RateLimiter throttles per client IP, with tighter limits on the login
// endpoints. Webhook and redirect paths get generous defaults since their
// traffic is bursty by nature.
type RateLimiter struct {
	ips            map[string]*rate.Limiter
	mu             *sync.RWMutex
	defaultLimit   rate.Limit
	defaultBurst   int
	endpointLimits map[string]endpointLimit
}

// NewRateLimiter creates a rate limiter with per-endpoint overrides
func NewRateLimiter() *RateLimiter {
	limiter := &RateLimiter{
		ips:            make(map[string]*rate.Limiter),
		mu:             &sync.RWMutex{},
		defaultLimit:   rate.Every(50 * time.Millisecond), // 20 requests per second
		defaultBurst:   40,
		endpointLimits: make(map[string]endpointLimit),
	}

	// Strict limits on credential endpoints to slow brute force attempts
	limiter.endpointLimits["/api/admin/login"] = endpointLimit{
		limit: rate.Every(2 * time.Second),
		burst: 5,
	}
	limiter.endpointLimits["/api/partner/login"] = endpointLimit{
		limit: rate.Every(time.Second),
		burst: 5,
	}

	return limiter
}

func (rl *RateLimiter) getLimiter(ip, path string) *rate.Limiter {
	key := ip + path

	rl.mu.RLock()
	limiter, exists := rl.ips[key]
	rl.mu.RUnlock()
	if exists {
		return limiter
	}

	limit := rl.defaultLimit
	burst := rl.defaultBurst
	if el, ok := rl.endpointLimits[path]; ok {
		limit = el.limit
		burst = el.burst
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if limiter, exists = rl.ips[key]; exists {
		return limiter
	}
	limiter = rate.NewLimiter(limit, burst)
	rl.ips[key] = limiter
	return limiter
}

// RateLimit returns the Echo middleware
func (rl *RateLimiter) RateLimit() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			limiter := rl.getLimiter(c.RealIP(), c.Path())
			if !limiter.Allow() {
				return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests")
			}
			return next(c)
		}
	}
}
