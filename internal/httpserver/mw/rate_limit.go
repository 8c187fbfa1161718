package mw

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/MrSnakeDoc/linktree/internal/utils"
)

// RateLimitConfig sizes a per-client token bucket.
type RateLimitConfig struct {
	Burst         int           // bucket capacity
	PerMinute     int           // refill rate
	MaxClients    int           // buckets kept before idle ones are swept early, 0 = unbounded
	SweepInterval time.Duration // how often idle buckets are dropped
	IdleTTL       time.Duration // a bucket unused this long is dropped
	TrustProxy    bool          // key on proxy headers instead of RemoteAddr
}

func (c RateLimitConfig) withDefaults() RateLimitConfig {
	if c.Burst < 1 {
		c.Burst = 1
	}
	if c.PerMinute < 1 {
		c.PerMinute = 1
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = time.Minute
	}
	if c.IdleTTL <= 0 {
		c.IdleTTL = 15 * time.Minute
	}
	return c
}

type bucket struct {
	tokens float64
	last   time.Time
}

// Limiter is a token bucket per client key. A single mutex guards every
// bucket; a request costs one map lookup and a few float operations.
type Limiter struct {
	cfg       RateLimitConfig
	perSecond float64
	now       func() time.Time

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

func NewLimiter(cfg RateLimitConfig) *Limiter {
	cfg = cfg.withDefaults()
	return &Limiter{
		cfg:       cfg,
		perSecond: float64(cfg.PerMinute) / 60,
		now:       time.Now,
		buckets:   make(map[string]*bucket),
	}
}

// Take spends one token for key. When none is left it reports how long
// until the next one.
func (l *Limiter) Take(key string) (ok bool, remaining int, retryAfter time.Duration) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= l.cfg.SweepInterval ||
		(l.cfg.MaxClients > 0 && len(l.buckets) >= l.cfg.MaxClients) {
		l.sweep(now)
	}

	b, found := l.buckets[key]
	if !found {
		b = &bucket{tokens: float64(l.cfg.Burst), last: now}
		l.buckets[key] = b
	}

	if elapsed := now.Sub(b.last).Seconds(); elapsed > 0 {
		b.tokens = math.Min(float64(l.cfg.Burst), b.tokens+elapsed*l.perSecond)
	}
	b.last = now

	if b.tokens >= 1 {
		b.tokens--
		return true, int(b.tokens), 0
	}

	wait := time.Duration((1 - b.tokens) / l.perSecond * float64(time.Second))
	return false, 0, max(wait, time.Second)
}

func (l *Limiter) sweep(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.last) > l.cfg.IdleTTL {
			delete(l.buckets, key)
		}
	}
	l.lastSweep = now
}

// RateLimit rejects clients that exhausted their bucket with 429 and a
// Retry-After header.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	l := NewLimiter(cfg)
	limit := strconv.Itoa(l.cfg.Burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, remaining, retry := l.Take(utils.ClientIP(r, l.cfg.TrustProxy))

			h := w.Header()
			h.Set("X-RateLimit-Limit", limit)
			h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			if !ok {
				h.Set("Retry-After", strconv.Itoa(int(math.Ceil(retry.Seconds()))))
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
