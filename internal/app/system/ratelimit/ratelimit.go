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
// concurrent use. Expired windows are swept lazily, so no goroutine is
// left running.
type Limiter struct {
	mu        sync.Mutex
	windows   map[string]window
	limit     int
	duration  time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type window struct {
	count     int
	expiresAt time.Time
}

// New allows limit requests per key every duration.
func New(limit int, duration time.Duration) *Limiter {
	return &Limiter{
		windows:  make(map[string]window),
		limit:    limit,
		duration: duration,
		now:      time.Now,
	}
}

// Allow records a request for key and reports whether it is within the limit.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	w, ok := l.windows[key]
	if !ok || now.After(w.expiresAt) {
		l.windows[key] = window{count: 1, expiresAt: now.Add(l.duration)}
		return true
	}
	if w.count >= l.limit {
		return false
	}
	w.count++
	l.windows[key] = w
	return true
}

// Reset forgets key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
}

// Len is the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

// sweep drops expired windows at most once per duration. Callers hold mu.
func (l *Limiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.duration {
		return
	}
	l.lastSweep = now
	for k, w := range l.windows {
		if now.After(w.expiresAt) {
			delete(l.windows, k)
		}
	}
}

// ClientIP returns the host part of r.RemoteAddr. Proxy headers are not
// read here; chi's RealIP middleware has already folded them into
// RemoteAddr.
func ClientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// LoginConfig sets the login limits. Zero values use the defaults of
// 10 attempts per IP per minute and 5 per email per 5 minutes.
type LoginConfig struct {
	PerIP          int
	PerIPWindow    time.Duration
	PerEmail       int
	PerEmailWindow time.Duration
}

// LoginLimiter guards sign-in against both spraying from one address and
// guessing at one account from many.
type LoginLimiter struct {
	ip    *Limiter
	email *Limiter
}

func NewLoginLimiter(cfg LoginConfig) *LoginLimiter {
	if cfg.PerIP <= 0 {
		cfg.PerIP = 10
	}
	if cfg.PerIPWindow <= 0 {
		cfg.PerIPWindow = time.Minute
	}
	if cfg.PerEmail <= 0 {
		cfg.PerEmail = 5
	}
	if cfg.PerEmailWindow <= 0 {
		cfg.PerEmailWindow = 5 * time.Minute
	}
	return &LoginLimiter{
		ip:    New(cfg.PerIP, cfg.PerIPWindow),
		email: New(cfg.PerEmail, cfg.PerEmailWindow),
	}
}

// Allow records one attempt from ip for email.
func (ll *LoginLimiter) Allow(ip, email string) bool {
	if !ll.ip.Allow(ip) {
		return false
	}
	if key := emailKey(email); key != "" {
		return ll.email.Allow(key)
	}
	return true
}

// Succeeded clears the per-email count after a good sign-in.
func (ll *LoginLimiter) Succeeded(email string) {
	if key := emailKey(email); key != "" {
		ll.email.Reset(key)
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
