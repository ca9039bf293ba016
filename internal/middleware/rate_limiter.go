package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// DefaultMaxClients is the number of client buckets kept when no limit is set.
const DefaultMaxClients = 10000

type RateLimitOptions struct {
	// Limit by the first X-Forwarded-For address instead of the connection,
	// only enable when the API is reachable through a trusted proxy alone.
	TrustedProxy bool

	// The number of clients tracked at once, the least recently seen client is
	// evicted once exceeded.
	MaxClients int
}

// IPRateLimiter keeps a token bucket per client address.
type IPRateLimiter struct {
	ips          *lru.Cache[string, *rate.Limiter]
	mu           sync.Mutex
	r            rate.Limit
	b            int
	trustedProxy bool
}

func NewIPRateLimiter(r rate.Limit, b int, opts RateLimitOptions) *IPRateLimiter {
	if b < 1 {
		b = 1
	}

	if opts.MaxClients < 1 {
		opts.MaxClients = DefaultMaxClients
	}

	// only fails for sizes below one
	ips, _ := lru.New[string, *rate.Limiter](opts.MaxClients)

	return &IPRateLimiter{
		ips:          ips,
		r:            r,
		b:            b,
		trustedProxy: opts.TrustedProxy,
	}
}

func (i *IPRateLimiter) getLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	limiter, exists := i.ips.Get(ip)
	if !exists {
		limiter = rate.NewLimiter(i.r, i.b)
		i.ips.Add(ip, limiter)
	}

	return limiter
}

// getIP uses the remote address of the connection, or the first address of
// X-Forwarded-For when running behind a trusted proxy.
func (i *IPRateLimiter) getIP(r *http.Request) string {
	if i.trustedProxy {
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			return strings.TrimSpace(strings.Split(forwarded, ",")[0])
		}
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return ip
}

// Clients returns the number of client buckets currently tracked.
func (i *IPRateLimiter) Clients() int {
	return i.ips.Len()
}

func (i *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := i.getIP(r)

		if !i.getLimiter(ip).Allow() {
			log.Debug().Str("ip", ip).Msg("rate limit exceeded")
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func RateLimitMiddleware(r rate.Limit, b int, opts RateLimitOptions) func(http.Handler) http.Handler {
	return NewIPRateLimiter(r, b, opts).Middleware
}
