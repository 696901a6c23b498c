package handler

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	pruneEvery = 10 * time.Minute
	entryTTL   = 15 * time.Minute
)

// ipLimiter rate-limits requests per remote IP. Stale entries are pruned
// in-band during allow, so the map does not grow unbounded and no goroutine
// outlives the router.
type ipLimiter struct {
	limiters  map[string]*ipEntry
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	lastPrune time.Time
}

type ipEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newIPLimiter(perMinute, burst int) *ipLimiter {
	return &ipLimiter{
		limiters:  make(map[string]*ipEntry),
		limit:     rate.Limit(float64(perMinute) / 60.0),
		burst:     burst,
		lastPrune: time.Now(),
	}
}

func (l *ipLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if now.Sub(l.lastPrune) > pruneEvery {
		for addr, e := range l.limiters {
			if now.Sub(e.lastSeen) > entryTTL {
				delete(l.limiters, addr)
			}
		}
		l.lastPrune = now
	}

	e, ok := l.limiters[ip]
	if !ok {
		e = &ipEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[ip] = e
	}
	e.lastSeen = now
	return e.limiter.Allow()
}

// middleware rejects over-limit requests with 429.
func (l *ipLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		if !l.allow(ip) {
			respondError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}
