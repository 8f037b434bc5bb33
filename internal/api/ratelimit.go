package api

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/agentsform/studymate-api/internal/apimetrics"
)

const (
	defaultRateLimit  = 120
	defaultRateWindow = time.Minute
)

// visitor tracks one client's request history inside the current window.
type visitor struct {
	stamps   []time.Time
	lastSeen time.Time
}

// RateLimiter applies a per-IP sliding-window limit. Entries for clients
// that have gone quiet for a full window are evicted so the map does not
// grow with every IP ever seen.
type RateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     int
	window    time.Duration
	lastSweep time.Time
}

// NewRateLimiter creates a rate limiter allowing limit requests per window.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = defaultRateLimit
	}
	if window <= 0 {
		window = defaultRateWindow
	}
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    limit,
		window:   window,
	}
}

// Allow reports whether a request from ip may proceed, recording it if so.
func (rl *RateLimiter) Allow(ip string) bool {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.sweepLocked(now)

	v := rl.visitors[ip]
	if v == nil {
		v = &visitor{}
		rl.visitors[ip] = v
	}
	v.lastSeen = now

	cutoff := now.Add(-rl.window)
	kept := v.stamps[:0]
	for _, ts := range v.stamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	v.stamps = kept

	if len(v.stamps) >= rl.limit {
		return false
	}
	v.stamps = append(v.stamps, now)
	return true
}

// sweepLocked evicts visitors idle for longer than a window. It runs at
// most once per window so steady traffic does not pay a full map scan on
// every request.
func (rl *RateLimiter) sweepLocked(now time.Time) {
	if now.Sub(rl.lastSweep) < rl.window {
		return
	}
	rl.lastSweep = now
	for ip, v := range rl.visitors {
		if now.Sub(v.lastSeen) > rl.window {
			delete(rl.visitors, ip)
		}
	}
}

// Middleware rejects over-limit requests with 429 and counts the rejection.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	retryAfter := strconv.Itoa(int(rl.window / time.Second))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(clientIP(r)) {
			apimetrics.RateLimitedTotal.WithLabelValues(r.URL.Path).Inc()
			w.Header().Set("Retry-After", retryAfter)
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP resolves the originating client address, trusting the first
// X-Forwarded-For hop when a proxy added one.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
