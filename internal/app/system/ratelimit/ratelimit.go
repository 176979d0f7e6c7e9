// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Limiter counts requests per key in fixed windows. It is safe for
// concurrent use. Stop ends the cleanup goroutine.
type Limiter struct {
	mu       sync.Mutex
	windows  map[string]*window
	limit    int
	duration time.Duration
	now      func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

type window struct {
	count     int
	expiresAt time.Time
}

// New creates a limiter allowing limit requests per key per duration.
func New(limit int, duration time.Duration) *Limiter {
	l := &Limiter{
		windows:  make(map[string]*window),
		limit:    limit,
		duration: duration,
		now:      time.Now,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go l.cleanupLoop(duration * 2)
	return l
}

// Allow records a request for key and reports whether it is within the limit.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || now.After(w.expiresAt) {
		l.windows[key] = &window{count: 1, expiresAt: now.Add(l.duration)}
		return true
	}
	if w.count >= l.limit {
		return false
	}
	w.count++
	return true
}

// Remaining returns how many requests key has left in its current window.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || l.now().After(w.expiresAt) {
		return l.limit
	}
	return max(l.limit-w.count, 0)
}

// Reset clears the window for key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
}

// Stop ends the cleanup goroutine and waits for it. Safe to call twice.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
	<-l.done
}

func (l *Limiter) cleanupLoop(every time.Duration) {
	defer close(l.done)
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.mu.Lock()
			now := l.now()
			for key, w := range l.windows {
				if now.After(w.expiresAt) {
					delete(l.windows, key)
				}
			}
			l.mu.Unlock()
		}
	}
}

// ClientIP extracts the client IP from an HTTP request, preferring
// X-Forwarded-For and X-Real-IP over RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// LoginLimiter throttles password attempts against the admin gate by client
// IP. There is a single shared secret, so there is no per-account key.
type LoginLimiter struct {
	ip *Limiter
}

// NewLoginLimiter allows attempts per client IP per window.
func NewLoginLimiter(attempts int, window time.Duration) *LoginLimiter {
	return &LoginLimiter{ip: New(attempts, window)}
}

// Check records an attempt from r and returns a user-facing reason when it
// is blocked.
func (ll *LoginLimiter) Check(r *http.Request) (bool, string) {
	if !ll.ip.Allow(ClientIP(r)) {
		return false, "Too many login attempts. Please wait a minute before trying again."
	}
	return true, ""
}

// Succeeded clears the attempt window for r's client after a good password.
func (ll *LoginLimiter) Succeeded(r *http.Request) {
	ll.ip.Reset(ClientIP(r))
}

// Stop releases the limiter's goroutine.
func (ll *LoginLimiter) Stop() { ll.ip.Stop() }
