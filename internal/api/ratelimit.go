package api

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// RateLimiter is a fixed-window request counter keyed by client address.
// Once a client exceeds the limit inside the current window, requests are
// answered with 429 before reaching any handler. Counters reset when the
// window rolls over; stale entries are dropped on the way.
type RateLimiter struct {
	limit   int
	window  time.Duration
	message string

	mu      sync.Mutex
	clients map[string]*windowCount
}

type windowCount struct {
	start time.Time
	count int
}

// NewRateLimiter creates a limiter allowing limit requests per window.
func NewRateLimiter(limit int, window time.Duration, message string) *RateLimiter {
	return &RateLimiter{
		limit:   limit,
		window:  window,
		message: message,
		clients: make(map[string]*windowCount),
	}
}

// allow records a hit for key and reports whether it is within the limit,
// along with the remaining quota and the time the window resets.
func (rl *RateLimiter) allow(key string, now time.Time) (ok bool, remaining int, reset time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	wc := rl.clients[key]
	if wc == nil || now.Sub(wc.start) >= rl.window {
		// New window. Sweep stale entries so the map stays bounded by
		// the set of clients active in the current window.
		for k, v := range rl.clients {
			if now.Sub(v.start) >= rl.window {
				delete(rl.clients, k)
			}
		}
		wc = &windowCount{start: now}
		rl.clients[key] = wc
	}

	wc.count++
	remaining = rl.limit - wc.count
	if remaining < 0 {
		remaining = 0
	}
	return wc.count <= rl.limit, remaining, wc.start.Add(rl.window)
}

// Middleware wraps next with the rate limit, answering 429 with standard
// RateLimit-* headers once a client exhausts its window.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		now := time.Now()
		ok, remaining, reset := rl.allow(clientAddr(r), now)

		h := w.Header()
		h.Set("RateLimit-Limit", strconv.Itoa(rl.limit))
		h.Set("RateLimit-Remaining", strconv.Itoa(remaining))
		h.Set("RateLimit-Reset", strconv.Itoa(int(time.Until(reset).Seconds())))

		if !ok {
			jsonError(w, http.StatusTooManyRequests, rl.message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientAddr returns the client IP without the ephemeral port, so a client's
// separate connections share one counter.
func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
