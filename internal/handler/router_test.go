package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/crm-api/internal/auth"
	"github.com/BuzzLyutic/crm-api/internal/ratelimit"
	"github.com/BuzzLyutic/crm-api/internal/service"
)

// countingAllower admits limit hits per key and remembers the keys it saw.
type countingAllower struct {
	mu    sync.Mutex
	hits  map[string]int
	limit int
}

func (c *countingAllower) Allow(ctx context.Context, key string, limit int, window time.Duration) (ratelimit.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hits[key]++
	n := c.hits[key]
	remaining := c.limit - n
	if remaining < 0 {
		remaining = 0
	}
	return ratelimit.Result{
		Allowed:   n <= c.limit,
		Remaining: remaining,
		ResetAt:   time.Now().Add(window),
		Limit:     c.limit,
	}, nil
}

func setupThrottledRouter(t *testing.T, trustProxy bool) (http.Handler, *countingAllower) {
	t.Helper()
	logger := zap.NewNop()
	allower := &countingAllower{hits: make(map[string]int), limit: 1}
	users := new(MockAuthService)
	users.On("Login", mock.Anything, mock.Anything, mock.Anything).
		Return(service.LoginResult{}, service.ErrInvalidCredentials)

	tokens := auth.NewTokenManager(auth.TokenConfig{Secret: "router-test-secret", Expiry: time.Hour})
	loginLimit := ratelimit.Middleware(allower, ratelimit.Policy{Name: "login", Limit: 1, Window: time.Minute}, logger)
	routes := Routes(NewTaskHandler(new(MockTaskService), logger), NewAuthHandler(users, logger), loginLimit)
	return NewRouter(auth.NewGate(tokens, logger), routes, logger, trustProxy), allower
}

func login(h http.Handler, remoteAddr, forwardedFor string) int {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"a@b.c","password":"x"}`))
	req.RemoteAddr = remoteAddr
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w.Code
}

func TestRouter_LoginThrottleIgnoresForwardedHeaders(t *testing.T) {
	h, allower := setupThrottledRouter(t, false)

	assert.Equal(t, http.StatusBadRequest, login(h, "203.0.113.9:4444", "10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, login(h, "203.0.113.9:4444", "10.0.0.2"))
	assert.Equal(t, http.StatusTooManyRequests, login(h, "203.0.113.9:5555", "10.0.0.3"))

	assert.Equal(t, map[string]int{"login:203.0.113.9": 3}, allower.hits)
}

func TestRouter_LoginThrottleBehindTrustedProxy(t *testing.T) {
	h, allower := setupThrottledRouter(t, true)

	assert.Equal(t, http.StatusBadRequest, login(h, "10.1.1.1:4444", "198.51.100.7"))
	assert.Equal(t, http.StatusBadRequest, login(h, "10.1.1.1:4444", "198.51.100.8"))
	assert.Equal(t, http.StatusTooManyRequests, login(h, "10.1.1.1:4444", "198.51.100.7"))

	assert.Equal(t, 2, allower.hits["login:198.51.100.7"])
	assert.Equal(t, 1, allower.hits["login:198.51.100.8"])
}
