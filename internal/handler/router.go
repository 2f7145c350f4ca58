package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/crm-api/internal/auth"
	"github.com/BuzzLyutic/crm-api/pkg/respond"
)

// Route is one entry of the routing table. Public routes skip token checks.
type Route struct {
	Method      string
	Pattern     string
	Handler     http.HandlerFunc
	Public      bool
	Middlewares []func(http.Handler) http.Handler
}

// Routes builds the application's routing table. loginLimit wraps the login
// endpoint only.
func Routes(tasks *TaskHandler, users *AuthHandler, loginLimit func(http.Handler) http.Handler) []Route {
	login := Route{Method: http.MethodPost, Pattern: "/auth/login", Handler: users.Login, Public: true}
	if loginLimit != nil {
		login.Middlewares = append(login.Middlewares, loginLimit)
	}

	return []Route{
		{Method: http.MethodGet, Pattern: "/health", Handler: Health, Public: true},
		login,
		{Method: http.MethodGet, Pattern: "/auth/me", Handler: users.Me},

		{Method: http.MethodPost, Pattern: "/tasks", Handler: tasks.Create},
		{Method: http.MethodGet, Pattern: "/tasks", Handler: tasks.List},
		{Method: http.MethodGet, Pattern: "/tasks/stats", Handler: tasks.Stats},
		{Method: http.MethodGet, Pattern: "/tasks/{id}", Handler: tasks.Get},
		{Method: http.MethodPatch, Pattern: "/tasks/{id}", Handler: tasks.Update},
		{Method: http.MethodDelete, Pattern: "/tasks/{id}", Handler: tasks.Delete},
		{Method: http.MethodPatch, Pattern: "/tasks/{id}/status", Handler: tasks.ChangeStatus},
		{Method: http.MethodGet, Pattern: "/tasks/{id}/activity", Handler: tasks.Activity},
	}
}

// NewRouter mounts routes behind the common middleware stack, composing the
// gate for each route according to its Public flag. X-Forwarded-For and
// X-Real-IP replace the peer address only when trustProxy is set; otherwise
// per-client limits key on the socket address.
func NewRouter(gate *auth.Gate, routes []Route, logger *zap.Logger, trustProxy bool) chi.Router {
	r := chi.NewRouter() // Создаем роутер
	r.Use(middleware.RequestID)
	if trustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)

	for _, rt := range routes {
		chain := append([]func(http.Handler) http.Handler{gate.Guard(rt.Public)}, rt.Middlewares...)
		r.With(chain...).Method(rt.Method, rt.Pattern, rt.Handler)
	}
	return r
}

func Health(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// RequestLogger writes one structured line per request.
func RequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("request",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("took", time.Since(start)),
			)
		})
	}
}
