package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"accounts-be/internal/cache"
	"accounts-be/internal/config"
	"accounts-be/internal/controllers"
	"accounts-be/internal/database"
	"accounts-be/internal/guard"
	"accounts-be/internal/jwt"
	"accounts-be/internal/logging"
	"accounts-be/internal/middleware"
	"accounts-be/internal/password"
	"accounts-be/internal/repository"
	"accounts-be/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	db, err := database.NewConnection(ctx, cfg.DatabaseURL, database.PoolOptions{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Info("connected to database")

	if err := database.RunMigrations(ctx, db); err != nil {
		return err
	}
	logger.Info("database migrations completed")

	// Lockout counters live in Redis when available, otherwise in this process
	counters := newCounterStore(ctx, cfg.RedisURL, logger)
	defer counters.Close()

	hasher, err := password.NewHasher(cfg.PasswordHasher, cfg.BcryptCost)
	if err != nil {
		return err
	}

	jwtService := jwt.NewJWTService(cfg.SecretKey, cfg.TokenTTL)
	loginGuard := guard.New(counters, cfg.LoginMaxAttempts, cfg.LoginWindow, cfg.LoginLockout)
	authService := service.NewAuthService(db, repository.NewUserRepository, hasher, jwtService, loginGuard, logger)

	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), logging.Middleware(logger))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{middleware.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	controllers.RegisterRoutes(router, controllers.Routes{
		Auth:        controllers.NewAuthController(authService),
		Health:      controllers.NewHealthController(db),
		RequireAuth: middleware.AuthMiddleware(authService),
		APILimit:    middleware.NewRateLimiter(ctx, rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst).LimitMiddleware(),
		AuthLimit:   middleware.NewRateLimiter(ctx, rate.Limit(cfg.RateLimitAuthRPS), cfg.RateLimitAuthBurst).LimitMiddleware(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", srv.Addr, "mode", cfg.GinMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newCounterStore(ctx context.Context, redisURL string, logger *slog.Logger) cache.Cache {
	if redisURL != "" {
		store, err := cache.NewRedisCache(ctx, redisURL)
		if err == nil {
			logger.Info("connected to Redis")
			return store
		}
		logger.Warn("Redis unavailable, using in-memory lockout counters", "error", err)
	}
	return cache.NewMemoryCache(ctx, time.Minute)
}
