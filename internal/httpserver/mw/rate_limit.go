package mw

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/MrSnakeDoc/tutor/internal/utils"
)

// RateLimitConfig configures the per-client limit on page routes.
type RateLimitConfig struct {
	Burst             int
	RefillPerIPPerMin int
	MaxEntries        int           // clients tracked before idle ones are swept early
	IdleTTL           time.Duration // clients unseen this long are forgotten
	TrustProxy        bool          // resolve the client IP from proxy headers
	Now               func() time.Time
	// OnReject is called for every request answered with 429.
	OnReject func(r *http.Request)
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// clients holds one rate.Limiter per client IP.
type clients struct {
	cfg       RateLimitConfig
	limit     rate.Limit
	mu        sync.Mutex
	byIP      map[string]*client
	lastSweep time.Time
}

func newClients(cfg RateLimitConfig) *clients {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 15 * time.Minute
	}
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	if cfg.RefillPerIPPerMin < 1 {
		cfg.RefillPerIPPerMin = 1
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &clients{
		cfg:       cfg,
		limit:     rate.Limit(float64(cfg.RefillPerIPPerMin) / 60.0),
		byIP:      make(map[string]*client, 256),
		lastSweep: cfg.Now(),
	}
}

func (c *clients) get(ip string, now time.Time) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	full := c.cfg.MaxEntries > 0 && len(c.byIP) >= c.cfg.MaxEntries
	if full || now.Sub(c.lastSweep) >= c.cfg.IdleTTL {
		for k, v := range c.byIP {
			if now.Sub(v.lastSeen) > c.cfg.IdleTTL {
				delete(c.byIP, k)
			}
		}
		c.lastSweep = now
	}

	cl := c.byIP[ip]
	if cl == nil {
		cl = &client{limiter: rate.NewLimiter(c.limit, c.cfg.Burst)}
		c.byIP[ip] = cl
	}
	cl.lastSeen = now
	return cl.limiter
}

// retryAfter is the number of whole seconds until one token is available.
func (c *clients) retryAfter(l *rate.Limiter, now time.Time) int {
	missing := 1 - l.TokensAt(now)
	wait := time.Duration(missing / float64(c.limit) * float64(time.Second))
	return max(int((wait+time.Second-1)/time.Second), 1)
}

// RateLimit answers 429 with Retry-After once a client IP has used its burst.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	c := newClients(cfg)
	limitStr := strconv.Itoa(c.cfg.Burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			now := c.cfg.Now()
			l := c.get(utils.ClientIP(r, c.cfg.TrustProxy), now)

			w.Header().Set("X-RateLimit-Limit", limitStr)
			if !l.AllowN(now, 1) {
				if c.cfg.OnReject != nil {
					c.cfg.OnReject(r)
				}
				w.Header().Set("Retry-After", strconv.Itoa(c.retryAfter(l, now)))
				w.Header().Set("X-RateLimit-Remaining", "0")
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(max(int(l.TokensAt(now)), 0)))
			next.ServeHTTP(w, r)
		})
	}
}
