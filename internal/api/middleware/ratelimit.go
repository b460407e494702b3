package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const defaultRateWindow = time.Minute

// RateLimiter is a sliding-window counter keyed by caller. Idle keys are
// dropped on the first Allow call after a full window has passed, so no
// background goroutine is needed.
type RateLimiter struct {
	requests int
	window   time.Duration

	mu        sync.Mutex
	hits      map[string][]time.Time
	lastSweep time.Time
	now       func() time.Time
}

func NewRateLimiter(requests, windowSeconds int) *RateLimiter {
	if requests <= 0 {
		requests = 100
	}
	window := time.Duration(windowSeconds) * time.Second
	if window <= 0 {
		window = defaultRateWindow
	}
	return &RateLimiter{
		requests: requests,
		window:   window,
		hits:     make(map[string][]time.Time),
		now:      time.Now,
	}
}

// Allow records a request for key. It returns whether the request fits the
// budget, how many requests remain, and when the oldest counted request
// leaves the window.
func (rl *RateLimiter) Allow(key string) (bool, int, time.Time) {
	now := rl.now()
	cutoff := now.Add(-rl.window)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if now.Sub(rl.lastSweep) >= rl.window {
		rl.sweep(cutoff)
		rl.lastSweep = now
	}

	kept := recent(rl.hits[key], cutoff)
	if len(kept) >= rl.requests {
		rl.hits[key] = kept
		return false, 0, kept[0].Add(rl.window)
	}

	kept = append(kept, now)
	rl.hits[key] = kept
	return true, rl.requests - len(kept), kept[0].Add(rl.window)
}

func (rl *RateLimiter) sweep(cutoff time.Time) {
	for key, stamps := range rl.hits {
		if kept := recent(stamps, cutoff); len(kept) > 0 {
			rl.hits[key] = kept
		} else {
			delete(rl.hits, key)
		}
	}
}

// recent drops timestamps at or before cutoff. stamps is in ascending order.
func recent(stamps []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(stamps) && !stamps[i].After(cutoff) {
		i++
	}
	return stamps[i:]
}

func (rl *RateLimiter) serve(w http.ResponseWriter, r *http.Request, next http.Handler, key string) {
	allowed, remaining, reset := rl.Allow(key)

	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.requests))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))

	if !allowed {
		retry := int(time.Until(reset).Seconds()) + 1
		w.Header().Set("Retry-After", strconv.Itoa(retry))
		writeError(w, http.StatusTooManyRequests, "Rate limit exceeded")
		return
	}
	next.ServeHTTP(w, r)
}

// RateLimit applies one budget per client IP.
func RateLimit(requests, windowSeconds int) func(http.Handler) http.Handler {
	limiter := NewRateLimiter(requests, windowSeconds)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limiter.serve(w, r, next, "ip:"+getClientIP(r))
		})
	}
}

// RoleLimits maps a user role to its request budget. Roles not listed, and
// unauthenticated callers, get Default.
type RoleLimits struct {
	Default int
	ByRole  map[string]int
}

// RateLimitByRole gives each authenticated user a budget chosen by their
// role. Must run after Auth; callers without a user are keyed by IP.
func RateLimitByRole(limits RoleLimits, windowSeconds int) func(http.Handler) http.Handler {
	fallback := NewRateLimiter(limits.Default, windowSeconds)
	byRole := make(map[string]*RateLimiter, len(limits.ByRole))
	for role, requests := range limits.ByRole {
		byRole[role] = NewRateLimiter(requests, windowSeconds)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := GetUserID(r.Context())
			if userID == uuid.Nil {
				fallback.serve(w, r, next, "ip:"+getClientIP(r))
				return
			}

			role := GetUserRole(r.Context())
			limiter, ok := byRole[role]
			if !ok {
				limiter = fallback
			}
			limiter.serve(w, r, next, role+":"+userID.String())
		})
	}
}

// getClientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then
// the connection address.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
