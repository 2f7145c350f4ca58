package auth

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/crm-api/pkg/respond"
)

const (
	bearerPrefix = "Bearer "

	MsgTokenMissing = "token missing"
	MsgTokenInvalid = "invalid or expired token"
)

// Verifier decodes and verifies a raw bearer token.
type Verifier interface {
	Verify(token string) (*Claims, error)
}

type claimsKey struct{}

// WithClaims returns a copy of ctx carrying c.
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

// ClaimsFromContext returns the claims attached by the gate, if any.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*Claims)
	return c, ok && c != nil
}

// Gate decides whether a request may reach its handler. It reads no
// persistent state and knows nothing about the resources behind it.
type Gate struct {
	verifier Verifier
	logger   *zap.Logger
}

func NewGate(verifier Verifier, logger *zap.Logger) *Gate {
	return &Gate{
		verifier: verifier,
		logger:   logger,
	}
}

// Guard returns the middleware for one route. Public routes pass straight
// through without the Authorization header being looked at.
func (g *Gate) Guard(public bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if public {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, bearerPrefix) {
				respond.Error(w, r, http.StatusUnauthorized, MsgTokenMissing)
				return
			}

			claims, err := g.verifier.Verify(strings.TrimPrefix(header, bearerPrefix))
			if err != nil {
				g.logger.Debug("token rejected",
					zap.String("path", r.URL.Path),
					zap.Error(err),
				)
				respond.Error(w, r, http.StatusUnauthorized, MsgTokenInvalid)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}
