package ratelimit

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/crm-api/pkg/respond"
)

type Allower interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (Result, error)
}

type Policy struct {
	Name   string
	Limit  int
	Window time.Duration
}

// Middleware limits requests per client IP under policy p. A nil limiter,
// including a nil *Limiter, disables limiting. Limiter errors let the
// request through.
func Middleware(l Allower, p Policy, logger *zap.Logger) func(http.Handler) http.Handler {
	if lim, ok := l.(*Limiter); ok && lim == nil {
		l = nil
	}
	return func(next http.Handler) http.Handler {
		if l == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := clientIP(r)
			res, err := l.Allow(r.Context(), p.Name+":"+client, p.Limit, p.Window)
			if err != nil {
				logger.Error("rate limit check failed",
					zap.String("policy", p.Name),
					zap.String("client", client),
					zap.Error(err),
				)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			if !res.Allowed {
				retry := int(math.Ceil(time.Until(res.ResetAt).Seconds()))
				if retry < 1 {
					retry = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				logger.Warn("rate limit exceeded",
					zap.String("policy", p.Name),
					zap.String("client", client),
				)
				respond.Error(w, r, http.StatusTooManyRequests, "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
