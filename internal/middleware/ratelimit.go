package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitOptions configures RateLimit.
type RateLimitOptions struct {
	// PerMinute is the sustained number of requests a client may make.
	PerMinute int
	// Burst defaults to PerMinute.
	Burst int
	// IdleTTL drops limiters of clients that have been quiet this long.
	IdleTTL time.Duration
	// OnLimited is called for every rejected request.
	OnLimited func(r *http.Request)
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPLimiter keeps one token bucket per client address.
type IPLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time
}

// NewIPLimiter builds a limiter allowing perMinute requests per client.
func NewIPLimiter(perMinute, burst int, idleTTL time.Duration) *IPLimiter {
	if burst <= 0 {
		burst = max(perMinute, 1)
	}
	if idleTTL <= 0 {
		idleTTL = 10 * time.Minute
	}
	return &IPLimiter{
		clients: make(map[string]*clientLimiter),
		limit:   rate.Limit(float64(perMinute) / 60.0),
		burst:   burst,
		idleTTL: idleTTL,
		now:     time.Now,
	}
}

// Reserve takes a token for key. When none is available it reports how long
// the client should wait.
func (l *IPLimiter) Reserve(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	l.evictLocked(now)

	c, ok := l.clients[key]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = c
	}
	c.lastSeen = now
	res := c.limiter.ReserveN(now, 1)
	if !res.OK() {
		return false, time.Minute
	}
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// Len returns the number of tracked clients.
func (l *IPLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

func (l *IPLimiter) evictLocked(now time.Time) {
	for key, c := range l.clients {
		if now.Sub(c.lastSeen) > l.idleTTL {
			delete(l.clients, key)
		}
	}
}

// RateLimit rejects clients exceeding their token bucket with 429 and a
// Retry-After header. A non-positive PerMinute disables limiting.
func RateLimit(opts RateLimitOptions) func(http.Handler) http.Handler {
	if opts.PerMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	limiter := NewIPLimiter(opts.PerMinute, opts.Burst, opts.IdleTTL)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, wait := limiter.Reserve(clientIP(r))
			if !ok {
				if opts.OnLimited != nil {
					opts.OnLimited(r)
				}
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP keys on the peer address. Proxy headers are applied upstream
// only when the deployment trusts them.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
