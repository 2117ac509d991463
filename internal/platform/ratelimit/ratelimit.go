// Package ratelimit is a per-client-IP token bucket for gin, kept in process.
package ratelimit

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"library-backend/internal/platform/apperr"
	"library-backend/internal/platform/config"
)

type client struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// Limiter hands out one bucket per key. A full bucket holds Requests tokens
// and refills at Requests per Window.
type Limiter struct {
	mu        sync.Mutex
	clients   map[string]*client
	every     rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func New(cfg config.RateLimit) *Limiter {
	return &Limiter{
		clients: map[string]*client{},
		every:   rate.Every(cfg.Window / time.Duration(cfg.Requests)),
		burst:   cfg.Requests,
		idleTTL: cfg.IdleTTL,
		now:     time.Now,
	}
}

// Reserve takes one token for key. When none is left it reports how long
// until the next one.
func (l *Limiter) Reserve(key string) (ok bool, remaining int, retryAfter time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	c, found := l.clients[key]
	if !found {
		c = &client{lim: rate.NewLimiter(l.every, l.burst)}
		l.clients[key] = c
	}
	c.lastSeen = now

	r := c.lim.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, 0, delay
	}
	return true, int(math.Max(0, c.lim.TokensAt(now))), 0
}

// sweep drops idle clients, at most once per idleTTL.
func (l *Limiter) sweep(now time.Time) {
	if l.idleTTL <= 0 || now.Sub(l.lastSweep) < l.idleTTL {
		return
	}
	l.lastSweep = now
	for k, c := range l.clients {
		if now.Sub(c.lastSeen) >= l.idleTTL {
			delete(l.clients, k)
		}
	}
}

// Middleware answers 429 once a client IP has used up its bucket.
func Middleware(l *Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, remaining, retry := l.Reserve(c.ClientIP())
		c.Header("RateLimit-Limit", strconv.Itoa(l.burst))
		c.Header("RateLimit-Remaining", strconv.Itoa(remaining))
		if !ok {
			secs := int(math.Ceil(retry.Seconds()))
			c.Header("Retry-After", strconv.Itoa(secs))
			apperr.Respond(c, apperr.ErrTooManyRequests("Too many requests from this IP, please try again later.").
				With("retry_after", secs))
			return
		}
		c.Next()
	}
}
