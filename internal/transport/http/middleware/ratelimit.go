package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"scorecard/internal/transport/http/api"
)

// RateLimitKeyFunc picks the bucket a request is counted against.
type RateLimitKeyFunc func(r *http.Request) string

type RateLimitOption func(*limiter)

func WithKeyFunc(fn RateLimitKeyFunc) RateLimitOption {
	return func(l *limiter) {
		if fn != nil {
			l.key = fn
		}
	}
}

// window is a fixed counting window for one key.
type window struct {
	used    int
	resetAt time.Time
}

type limiter struct {
	name   string
	limit  int
	period time.Duration
	key    RateLimitKeyFunc
	now    func() time.Time

	mu        sync.Mutex
	windows   map[string]*window
	nextSweep time.Time
}

func newLimiter(name string, limit int, period time.Duration) *limiter {
	return &limiter{
		name:    name,
		limit:   limit,
		period:  period,
		key:     actorOrIPKey,
		now:     time.Now,
		windows: make(map[string]*window),
	}
}

// RateLimit counts every request per actor, or per client address for
// unauthenticated callers.
func RateLimit(limit int, period time.Duration, opts ...RateLimitOption) func(http.Handler) http.Handler {
	l := newLimiter("requests", limit, period)
	for _, opt := range opts {
		opt(l)
	}
	return l.middleware(func(*http.Request) bool { return true })
}

// SensitiveMutationRateLimit gives batch endpoints (bulk close, score
// compute, bonus calculate) a quarter of baseLimit per actor. Other requests
// are not counted.
func SensitiveMutationRateLimit(baseLimit int, period time.Duration) func(http.Handler) http.Handler {
	l := newLimiter("batch", max(baseLimit/4, 1), period)
	return l.middleware(isBatchMutation)
}

func (l *limiter) middleware(applies func(*http.Request) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if l.limit > 0 && applies(r) && !l.allow(w, r) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// allow counts the request and writes the X-RateLimit headers. Over the
// limit it answers 429 itself and returns false.
func (l *limiter) allow(w http.ResponseWriter, r *http.Request) bool {
	key := l.key(r)
	if key == "" {
		key = clientIPKey(r)
	}

	now := l.now()
	l.mu.Lock()
	l.sweep(now)
	win := l.windows[key]
	if win == nil || !now.Before(win.resetAt) {
		win = &window{resetAt: now.Add(l.period)}
		l.windows[key] = win
	}
	win.used++
	used, resetAt := win.used, win.resetAt
	l.mu.Unlock()

	resetIn := secondsUntil(now, resetAt)
	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(l.limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(max(l.limit-used, 0)))
	h.Set("X-RateLimit-Reset", strconv.Itoa(resetIn))
	if used <= l.limit {
		return true
	}

	h.Set("Retry-After", strconv.Itoa(max(resetIn, 1)))
	slog.WarnContext(r.Context(), "rate limit exceeded",
		"limiter", l.name,
		"key", key,
		"method", r.Method,
		"path", r.URL.Path,
		"limit", l.limit,
	)
	api.Fail(w, http.StatusTooManyRequests, "rate_limited", "too many requests", GetRequestID(r.Context()))
	return false
}

// sweep drops expired windows at most once per period so idle keys do not
// accumulate. Callers hold l.mu.
func (l *limiter) sweep(now time.Time) {
	if now.Before(l.nextSweep) {
		return
	}
	for key, win := range l.windows {
		if !now.Before(win.resetAt) {
			delete(l.windows, key)
		}
	}
	l.nextSweep = now.Add(l.period)
}

func secondsUntil(now, t time.Time) int {
	d := t.Sub(now)
	if d <= 0 {
		return 0
	}
	return max(int(d/time.Second), 1)
}

func actorOrIPKey(r *http.Request) string {
	if actor, ok := GetActor(r.Context()); ok && actor.UserID != "" {
		return "user:" + actor.UserID
	}
	return clientIPKey(r)
}

// clientIPKey prefers the first X-Forwarded-For hop, then the peer address.
func clientIPKey(r *http.Request) string {
	if first, _, _ := strings.Cut(r.Header.Get("X-Forwarded-For"), ","); strings.TrimSpace(first) != "" {
		return "ip:" + strings.TrimSpace(first)
	}
	addr := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(addr); err == nil && host != "" {
		return "ip:" + host
	}
	return "ip:" + addr
}

var batchSuffixes = []string{"/evaluations/bulk-close", "/scores/compute"}

func isBatchMutation(r *http.Request) bool {
	if r.Method != http.MethodPost {
		return false
	}
	path := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/v1"), "/")
	for _, suffix := range batchSuffixes {
		if path == suffix {
			return true
		}
	}
	rest, ok := strings.CutPrefix(path, "/bonus/")
	return ok && strings.HasSuffix(rest, "/calculate")
}
