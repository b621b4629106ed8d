package api

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// clientLimiter hands out a token bucket per remote address so one noisy
// client cannot exhaust booking writes for everyone.
type clientLimiter struct {
	mu       sync.Mutex
	clients  map[string]*clientBucket
	rate     rate.Limit
	burst    int
	lastSeen time.Duration
}

type clientBucket struct {
	limiter *rate.Limiter
	seen    time.Time
}

func newClientLimiter(perMinute int) *clientLimiter {
	if perMinute <= 0 {
		perMinute = 30
	}
	return &clientLimiter{
		clients:  make(map[string]*clientBucket),
		rate:     rate.Limit(float64(perMinute) / 60.0),
		burst:    perMinute,
		lastSeen: 10 * time.Minute,
	}
}

func (l *clientLimiter) allow(remoteAddr string) bool {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	bucket, ok := l.clients[host]
	if !ok {
		bucket = &clientBucket{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.clients[host] = bucket
	}
	bucket.seen = now

	// Opportunistic sweep of stale clients.
	if len(l.clients) > 1024 {
		for k, b := range l.clients {
			if now.Sub(b.seen) > l.lastSeen {
				delete(l.clients, k)
			}
		}
	}

	return bucket.limiter.Allow()
}

// rateLimited wraps booking write endpoints with the per-client limiter.
func (s *Server) rateLimited(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.allow(r.RemoteAddr) {
			writeError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next(w, r)
	}
}
