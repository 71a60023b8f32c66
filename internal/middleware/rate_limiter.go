package middleware

import (
	"net/http"
	"sync"
	"time"

	"bebidaspos/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ── Fixed window limiter per client IP ───────────────────────────────────────

type windowEntry struct {
	count     int
	windowEnd time.Time
}

type windowLimiter struct {
	mu      sync.Mutex
	entries map[string]*windowEntry
	limit   int
	window  time.Duration
	message string
}

func newWindowLimiter(limit int, window time.Duration, message string) *windowLimiter {
	l := &windowLimiter{
		entries: make(map[string]*windowEntry),
		limit:   limit,
		window:  window,
		message: message,
	}
	registerForPurge(l)
	return l
}

// allow counts one request for ip and reports whether it is within the limit.
func (l *windowLimiter) allow(ip string, now time.Time) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[ip]
	if !ok {
		e = &windowEntry{}
		l.entries[ip] = e
	}
	if now.After(e.windowEnd) {
		e.count = 0
		e.windowEnd = now.Add(l.window)
	}
	e.count++
	return e.count <= l.limit, e.windowEnd
}

func (l *windowLimiter) purge(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for ip, e := range l.entries {
		if now.After(e.windowEnd) {
			delete(l.entries, ip)
			n++
		}
	}
	return n
}

func (l *windowLimiter) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, windowEnd := l.allow(c.ClientIP(), time.Now())
		if !ok {
			c.Header("Retry-After", windowEnd.UTC().Format(http.TimeFormat))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(l.message))
			return
		}
		c.Next()
	}
}

// LoginRateLimiter limits login attempts to 20 per minute per IP.
func LoginRateLimiter() gin.HandlerFunc {
	return newWindowLimiter(20, time.Minute,
		"Muitas tentativas de login. Tente novamente em 1 minuto.").middleware()
}

// RateLimiter limits every client IP to limit requests per window.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	return newWindowLimiter(limit, window,
		"Muitas requisições. Tente novamente em instantes.").middleware()
}

// ── Purge goroutine ───────────────────────────────────────────────────────────
// Expired entries are dropped periodically so IPs that never return do not
// accumulate.

const purgeInterval = 5 * time.Minute

var (
	limitersMu sync.Mutex
	limiters   []*windowLimiter
	purgeOnce  sync.Once
)

func registerForPurge(l *windowLimiter) {
	limitersMu.Lock()
	limiters = append(limiters, l)
	limitersMu.Unlock()
	purgeOnce.Do(func() { go purgeExpiredEntries() })
}

func purgeExpiredEntries() {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for now := range ticker.C {
		limitersMu.Lock()
		purged := 0
		for _, l := range limiters {
			purged += l.purge(now)
		}
		limitersMu.Unlock()

		if purged > 0 {
			log.Debug().Int("entries_purged", purged).Msg("rate limiter maps purged")
		}
	}
}
