package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/crm-api/internal/auth"
	"github.com/BuzzLyutic/crm-api/internal/config"
	"github.com/BuzzLyutic/crm-api/internal/handler"
	"github.com/BuzzLyutic/crm-api/internal/ratelimit"
	"github.com/BuzzLyutic/crm-api/internal/repo"
	"github.com/BuzzLyutic/crm-api/internal/service"
)

func main() {
	// Загрузка конфигурации
	cfg, cfgErr := config.Load()

	// Подключаем логгер
	logger := newLogger(cfg)
	if cfgErr != nil {
		logger.Fatal("Invalid configuration", zap.Error(cfgErr))
	}
	if cfg.UsingDevSecret {
		logger.Warn("JWT_SECRET is not set, using the development secret", zap.String("env", cfg.Env))
	}

	ctx := context.Background()

	// Подключаем БД
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to Database", zap.Error(err))
	}
	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("Failed to ping the Database", zap.Error(err))
	}
	logger.Info("Successfully connected to the Database!")

	var (
		redisClient *redis.Client
		loginLimit  func(http.Handler) http.Handler
	)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:         cfg.RedisAddr,
			Password:     cfg.RedisPassword,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatal("Failed to connect to Redis", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		loginLimit = ratelimit.Middleware(
			ratelimit.NewLimiter(redisClient, "crm:ratelimit:"),
			ratelimit.Policy{Name: "login", Limit: cfg.LoginRateLimit, Window: cfg.LoginRateWindow},
			logger,
		)
		logger.Info("Login throttling enabled",
			zap.Int("limit", cfg.LoginRateLimit),
			zap.Duration("window", cfg.LoginRateWindow),
		)
	}

	store := repo.NewStore(pool)
	tokens := auth.NewTokenManager(auth.TokenConfig{
		Secret: cfg.JWTSecret,
		Expiry: cfg.JWTExpiry,
		Issuer: cfg.JWTIssuer,
	})

	taskService := service.NewTaskService(store.Repositories(), store)
	authService := service.NewAuthService(store.Users(), auth.NewPasswordHasher(), tokens)

	routes := handler.Routes(
		handler.NewTaskHandler(taskService, logger),
		handler.NewAuthHandler(authService, logger),
		loginLimit,
	)
	r := handler.NewRouter(auth.NewGate(tokens, logger), routes, logger, cfg.TrustProxy)

	srv := &http.Server{ // Создаем сервер
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() { // Запуск сервера и обработка ошибок
		logger.Info("Server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown: сначала сервер, потом хранилища
	wait := gfshutdown.GracefulShutdown(ctx, cfg.ShutdownTimeout, map[string]gfshutdown.Operation{
		"crm-api": func(ctx context.Context) error {
			logger.Info("Shutting down server...")
			err := srv.Shutdown(ctx)
			if redisClient != nil {
				err = errors.Join(err, redisClient.Close())
			}
			pool.Close()
			return err
		},
	})

	code := <-wait
	logger.Info("Server stopped", zap.Int("exit_code", code))
	_ = logger.Sync()
	os.Exit(code)
}

func newLogger(cfg config.Config) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.IsProduction() {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		return zap.NewExample()
	}
	return logger
}
