package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"mindwell-backend/internal/shared/server/respond"
)

const (
	defaultRateLimitGroup = "DEFAULT"
	limiterIdleTTL        = 15 * time.Minute
	limiterSweepSize      = 4096
)

// RateLimitRule is a token bucket: Rate tokens per second, at most Burst banked.
type RateLimitRule struct {
	Rate  float64
	Burst int
}

func (r RateLimitRule) disabled() bool { return r.Rate <= 0 || r.Burst <= 0 }

// RateLimitConfig maps groups to rules. GroupFor picks the group of a request; blank means DefaultGroup.
// Requests in a group without a rule are not limited.
type RateLimitConfig struct {
	Rules        map[string]RateLimitRule
	DefaultGroup string
	GroupFor     func(*gin.Context) string
	Limiter      *RateLimiter
}

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per principal and group. Idle buckets are swept
// once the table grows past limiterSweepSize.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

func NewRateLimiter(now func() time.Time) *RateLimiter {
	if now == nil {
		now = time.Now
	}
	return &RateLimiter{buckets: make(map[string]*bucket), now: now}
}

// RateLimit rejects over-budget requests with 429, a Retry-After header and retryAfterMs in the envelope.
// Authenticated callers are keyed by user id, everyone else by client IP.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	limiter := cfg.Limiter
	if limiter == nil {
		limiter = NewRateLimiter(nil)
	}
	fallback := cfg.DefaultGroup
	if fallback == "" {
		fallback = defaultRateLimitGroup
	}

	return func(c *gin.Context) {
		group := fallback
		if cfg.GroupFor != nil {
			if g := strings.TrimSpace(cfg.GroupFor(c)); g != "" {
				group = g
			}
		}
		rule, ok := cfg.Rules[group]
		if !ok {
			c.Next()
			return
		}

		principal := UserIDFromContext(c)
		if principal == "" {
			principal = "ip:" + c.ClientIP()
		}
		allowed, wait := limiter.Allow(group+"|"+principal, rule)
		if allowed {
			c.Next()
			return
		}

		ms := wait.Milliseconds()
		if ms <= 0 {
			ms = 1000
		}
		c.Header("Retry-After", strconv.FormatInt((ms+999)/1000, 10))
		respond.Error(c, http.StatusTooManyRequests, "rate_limited", "Too many requests. Please slow down.",
			map[string]int64{"retryAfterMs": ms})
	}
}

// Allow takes one token for key. When denied it returns how long until a token is available.
func (l *RateLimiter) Allow(key string, rule RateLimitRule) (bool, time.Duration) {
	if l == nil || rule.disabled() {
		return true, 0
	}
	now := l.now()
	lim := l.bucketFor(key, rule, now)
	if lim.AllowN(now, 1) {
		return true, 0
	}

	res := lim.ReserveN(now, 1)
	if !res.OK() {
		return false, time.Second
	}
	wait := res.DelayFrom(now)
	res.CancelAt(now)
	return false, wait
}

func (l *RateLimiter) bucketFor(key string, rule RateLimitRule, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		if len(l.buckets) >= limiterSweepSize {
			l.sweepLocked(now)
		}
		b = &bucket{lim: rate.NewLimiter(rate.Limit(rule.Rate), rule.Burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	return b.lim
}

func (l *RateLimiter) sweepLocked(now time.Time) {
	for k, b := range l.buckets {
		if now.Sub(b.lastSeen) > limiterIdleTTL {
			delete(l.buckets, k)
		}
	}
}

// Len returns the number of live buckets.
func (l *RateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
