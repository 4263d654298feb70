package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	cacheadapter "github.com/codehaven/licensing-service/internal/adapters/cache"
	"github.com/codehaven/licensing-service/internal/adapters/envato"
	httpadapter "github.com/codehaven/licensing-service/internal/adapters/http"
	"github.com/codehaven/licensing-service/internal/adapters/postgres"
	"github.com/codehaven/licensing-service/internal/application"
	"github.com/codehaven/licensing-service/internal/ports"
)

type Runtime struct {
	cfg        Config
	logger     *slog.Logger
	httpServer *http.Server
	cleanupFn  func(context.Context)
}

func NewRuntime(ctx context.Context, configPath string) (*Runtime, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)
	logger.Info("bootstrapping licensing service", "http_port", cfg.HTTPPort, "envato_enabled", cfg.EnvatoEnabled)

	db, err := postgres.Connect(ctx, cfg.DatabaseURL, cfg.MaxDBConns)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("gorm sql db: %w", err)
	}

	if err := postgres.RunMigrations(ctx, db); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	redisClient, err := cacheadapter.Connect(ctx, cfg.RedisURL)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if err := redisClient.Ping(ctx).Err(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	repos := postgres.NewRepositories(db)

	var marketplace ports.PurchaseVerifier
	if cfg.EnvatoEnabled {
		marketplace = envato.NewClient(envato.ClientConfig{
			BaseURL: cfg.EnvatoBaseURL,
			Token:   cfg.EnvatoToken,
			HTTPClient: &http.Client{
				Timeout: cfg.EnvatoTimeout,
			},
		})
	}

	svc := application.NewService(application.Dependencies{
		Config: application.Config{
			AutoRegisterDomains: cfg.AutoRegisterDomains,
			AllowLocalhost:      cfg.AllowLocalhost,
			AllowWildcards:      cfg.AllowWildcards,
			DefaultMaxDomains:   cfg.DefaultMaxDomains,
			CacheTTL:            cfg.CacheTTL,
			RateLimitThreshold:  cfg.RateLimitThreshold,
			RateLimitWindow:     cfg.RateLimitWindow,
			EnvatoEnabled:       cfg.EnvatoEnabled,
			StatisticsWindow:    cfg.StatisticsWindow,
		},
		Products:        repos.Products,
		Licenses:        repos.Licenses,
		LicenseDomains:  repos.LicenseDomains,
		VerificationLog: repos.VerificationLog,
		Cache:           cacheadapter.NewRedisVerificationCache(redisClient),
		Rates:           cacheadapter.NewRedisRateLimitStore(redisClient),
		Marketplace:     marketplace,
	})

	ready := func(ctx context.Context) error {
		if err := sqlDB.PingContext(ctx); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		return nil
	}

	handler := httpadapter.NewHandler(svc, cfg.APIToken, ready)
	router := httpadapter.NewRouter(handler)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &Runtime{
		cfg:        cfg,
		logger:     logger,
		httpServer: httpServer,
		cleanupFn: func(ctx context.Context) {
			_ = redisClient.Close()
			_ = sqlDB.Close()
		},
	}, nil
}

func (r *Runtime) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		r.logger.Info("http server started", "addr", r.httpServer.Addr)
		if err := r.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		r.logger.Info("shutdown signal received")
	case err := <-errCh:
		r.logger.Error("server failure", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = r.httpServer.Shutdown(shutdownCtx)
	r.cleanupFn(shutdownCtx)
	return nil
}
