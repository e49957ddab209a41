package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v4"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64
}

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	visitors *xsync.Map[string, *visitor]
	rate     rate.Limit
	burst    int
	idle     time.Duration
}

func NewRateLimiter(r rate.Limit, burst int) *RateLimiter {
	return &RateLimiter{
		visitors: xsync.NewMap[string, *visitor](),
		rate:     r,
		burst:    burst,
		idle:     3 * time.Minute,
	}
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.limiter(clientIP(r)).Allow() {
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		ip, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(ip)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func (rl *RateLimiter) limiter(ip string) *rate.Limiter {
	v, ok := rl.visitors.Load(ip)
	if !ok {
		v, _ = rl.visitors.LoadOrStore(ip, &visitor{limiter: rate.NewLimiter(rl.rate, rl.burst)})
	}
	v.lastSeen.Store(time.Now().UnixNano())
	return v.limiter
}

// Cleanup forgets idle visitors every minute until ctx is done.
func (rl *RateLimiter) Cleanup(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.sweep(time.Now())
		}
	}
}

func (rl *RateLimiter) sweep(now time.Time) {
	rl.visitors.Range(func(ip string, v *visitor) bool {
		if now.Sub(time.Unix(0, v.lastSeen.Load())) > rl.idle {
			rl.visitors.Delete(ip)
		}
		return true
	})
}
