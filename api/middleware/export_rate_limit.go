package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/teklifbul/mukayese-backend/api/responses"
	pkgerrors "github.com/teklifbul/mukayese-backend/pkg/errors"
	"github.com/teklifbul/mukayese-backend/pkg/logger"
)

// RateLimiter decides whether one more request fits the window for key.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type fixedWindowStore interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// RedisRateLimiter counts requests per client in a shared fixed window so the
// limit holds across replicas.
type RedisRateLimiter struct {
	store  fixedWindowStore
	name   string
	limit  int64
	window time.Duration
}

func NewRedisRateLimiter(store fixedWindowStore, name string, limit int, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{store: store, name: name, limit: int64(limit), window: window}
}

func (l *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	allowed, _, err := l.store.FixedWindowAllow(ctx, l.name+":"+key, l.limit, l.window)
	return allowed, err
}

// LocalRateLimiter keeps one token bucket per client in process memory. It is
// used when Redis is not configured.
type LocalRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	every    rate.Limit
	burst    int
}

func NewLocalRateLimiter(limit int, window time.Duration) *LocalRateLimiter {
	if limit <= 0 {
		limit = 1
	}
	return &LocalRateLimiter{
		limiters: map[string]*rate.Limiter{},
		every:    rate.Every(window / time.Duration(limit)),
		burst:    limit,
	}
}

func (l *LocalRateLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	limiter, ok := l.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(l.every, l.burst)
		l.limiters[key] = limiter
	}
	l.mu.Unlock()
	return limiter.Allow(), nil
}

// RateLimit rejects requests over the limiter's budget with 429. A nil limiter
// disables the check.
func RateLimit(name string, limiter RateLimiter, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ip := clientIP(r)
			allowed, err := limiter.Allow(ctx, ip)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
				return
			}
			if !allowed {
				if logg != nil {
					logCtx := logg.WithFields(ctx, map[string]any{"policy": name, "ip": ip})
					logg.Warn(logCtx, "rate_limit.blocked")
				}
				responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
