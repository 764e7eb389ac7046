package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"realestate-service/internal/auth"
	"realestate-service/internal/config"
	"realestate-service/internal/metrics"
	"realestate-service/internal/middleware"
	mongodb "realestate-service/internal/mongo"
	"realestate-service/internal/repository"
	"realestate-service/internal/repository/memory"
	"realestate-service/internal/repository/postgres"
	"realestate-service/internal/server"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(level, format string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	if format == "console" {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}

func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (*repository.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		st, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		log.Info("connected to PostgreSQL")
		return st, nil
	case config.DriverMemory:
		log.Warn("using in-memory store; data is lost on restart")
		return memory.New(), nil
	default:
		client, err := mongodb.NewMongoClient(ctx, cfg.MongoURI, log)
		if err != nil {
			return nil, err
		}
		if err := mongodb.EnsureIndexes(ctx, client.Database(cfg.MongoDB)); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		return repository.NewMongoStore(client, cfg.MongoDB), nil
	}
}

func newLimiter(ctx context.Context, cfg *config.Config, log *zap.Logger) (middleware.Limiter, func()) {
	if cfg.Redis.Addr == "" {
		return middleware.NewLocalLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst), func() {}
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("redis unreachable, rate limiter will fail open", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
	}
	// a window admits rps*window requests, never fewer than the burst
	limit := int(cfg.RateLimit.RPS * cfg.RateLimit.Window.Seconds())
	if limit < cfg.RateLimit.Burst {
		limit = cfg.RateLimit.Burst
	}
	return middleware.NewRedisLimiter(rdb, limit, cfg.RateLimit.Window, "ratelimit:auth"), func() { _ = rdb.Close() }
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			log.Warn("close store", zap.Error(err))
		}
	}()

	limiter, closeLimiter := newLimiter(ctx, cfg, log)
	defer closeLimiter()

	router := server.NewRouter(server.Deps{
		Store:       store,
		Tokens:      auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL),
		Metrics:     metrics.New(),
		Limiter:     limiter,
		CORSOrigins: cfg.CORSOrigins,
		Logger:      log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr), zap.String("store", cfg.StoreDriver))
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

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
