package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/minwonhaeso/esc-server/internal/http/response"
	"github.com/minwonhaeso/esc-server/internal/observability"
)

type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error)
}

type FailureMode string

const (
	FailOpen   FailureMode = "fail_open"
	FailClosed FailureMode = "fail_closed"
)

type fixedWindow struct {
	count       int
	windowStart time.Time
}

type localFixedWindowLimiter struct {
	mu      sync.Mutex
	store   map[string]*fixedWindow
	cleanup time.Time
	now     func() time.Time
}

func NewLocalFixedWindowLimiter() Limiter {
	return &localFixedWindowLimiter{
		store:   make(map[string]*fixedWindow),
		cleanup: time.Now().Add(time.Minute),
		now:     time.Now,
	}
}

func (rl *localFixedWindowLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error) {
	now := rl.now()
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if now.After(rl.cleanup) {
		for k, v := range rl.store {
			if now.Sub(v.windowStart) > 2*window {
				delete(rl.store, k)
			}
		}
		rl.cleanup = now.Add(window)
	}

	entry, ok := rl.store[key]
	if !ok || now.Sub(entry.windowStart) >= window {
		rl.store[key] = &fixedWindow{count: 1, windowStart: now}
		return true, 0, nil
	}
	if entry.count >= limit {
		return false, max(window-now.Sub(entry.windowStart), 0), nil
	}
	entry.count++
	return true, 0, nil
}

// RateLimiter throttles one route group (scope) per client IP.
type RateLimiter struct {
	limiter Limiter
	limit   int
	window  time.Duration
	mode    FailureMode
	scope   string
	backend string
}

func NewRateLimiter(limit int, window time.Duration, scope string) *RateLimiter {
	rl := NewDistributedRateLimiter(NewLocalFixedWindowLimiter(), limit, window, FailClosed, scope)
	rl.backend = "local"
	return rl
}

func NewDistributedRateLimiter(limiter Limiter, limit int, window time.Duration, mode FailureMode, scope string) *RateLimiter {
	if scope == "" {
		scope = "api"
	}
	return &RateLimiter{
		limiter: limiter,
		limit:   limit,
		window:  window,
		mode:    mode,
		scope:   scope,
		backend: "distributed",
	}
}

func (rl *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if rl == nil || rl.limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			key := rl.scope + ":" + clientIPKey(r)
			allowed, retryAfter, err := rl.limiter.Allow(ctx, key, rl.limit, rl.window)
			if err != nil {
				if rl.mode == FailOpen {
					slog.WarnContext(ctx, "rate limiter backend unavailable, allowing request",
						"scope", rl.scope,
						"mode", string(rl.mode),
						"error", err.Error(),
					)
					observability.RecordRateLimitDecision(ctx, rl.scope, "allow_degraded", rl.backend, "ip")
					next.ServeHTTP(w, r)
					return
				}
				observability.RecordRateLimitDecision(ctx, rl.scope, "deny_backend_error", rl.backend, "ip")
				rl.reject(w, r, rl.window, "backend_error")
				return
			}
			if !allowed {
				observability.RecordRateLimitDecision(ctx, rl.scope, "deny", rl.backend, "ip")
				rl.reject(w, r, retryAfter, "window")
				return
			}
			observability.RecordRateLimitDecision(ctx, rl.scope, "allow", rl.backend, "ip")
			next.ServeHTTP(w, r)
		})
	}
}

func (rl *RateLimiter) reject(w http.ResponseWriter, r *http.Request, retryAfter time.Duration, reason string) {
	observability.RecordRateLimitRetryAfter(r.Context(), rl.scope, reason, retryAfter)
	w.Header().Set("Retry-After", retryAfterHeader(retryAfter))
	response.Error(w, r, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests", nil)
}

func clientIPKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

func retryAfterHeader(d time.Duration) string {
	seconds := int(d.Round(time.Second).Seconds())
	if seconds <= 0 {
		seconds = 1
	}
	return strconv.Itoa(seconds)
}
