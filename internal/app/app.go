package app

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

	"github.com/yurkevych/seatstore/internal/cart"
	"github.com/yurkevych/seatstore/internal/config"
	"github.com/yurkevych/seatstore/internal/gateway"
	"github.com/yurkevych/seatstore/internal/postgres"
	"github.com/yurkevych/seatstore/internal/redis"
	postgresrepo "github.com/yurkevych/seatstore/internal/repository/postgres"
	redisrepo "github.com/yurkevych/seatstore/internal/repository/redis"
	"github.com/yurkevych/seatstore/internal/service"
	"github.com/yurkevych/seatstore/internal/service/checkout"
	httpgin "github.com/yurkevych/seatstore/internal/transport/http/gin"
	"golang.org/x/sync/errgroup"
)

type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	httpServer *http.Server
	services   *service.Services
}

func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	// Initialize dependencies
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Postgres.User,
		cfg.Postgres.Password,
		cfg.Postgres.Host,
		cfg.Postgres.Port,
		cfg.Postgres.Name,
		cfg.Postgres.SSLMode,
	)

	pgxPool, err := postgres.New(context.Background(), postgres.Config{DSN: dsn})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize postgres: %w", err)
	}

	rdb, err := redis.New(context.Background(), redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	// Initialize repositories
	store := postgresrepo.NewStore(pgxPool)
	cache := redisrepo.New(rdb)
	pubsub := redisrepo.NewOrdersPubSub(rdb)
	limiter := redisrepo.NewSlidingWindowLimiter(rdb, "checkout", 10, 1*time.Minute)
	idempotencyStore := redisrepo.NewIdempotencyStore(rdb, 2*time.Hour)

	// Payment gateway client
	gw := gateway.NewHTTPClient(gateway.Config{
		BaseURL:   cfg.Gateway.BaseURL,
		APIKey:    cfg.Gateway.APIKey,
		Currency:  cfg.Gateway.Currency,
		ReturnURL: cfg.Gateway.ReturnURL,
		CancelURL: cfg.Gateway.CancelURL,
	})

	// Initialize services
	services := service.NewServices(store, cache, pubsub, limiter, gw, service.Config{
		Checkout: checkout.Config{
			HoldTTL:  cfg.Checkout.HoldTTL,
			Provider: cfg.Gateway.Provider,
		},
		SweepInterval: cfg.Checkout.SweepInterval,
	}, logger)

	// In-memory carts, one per buyer
	carts := cart.NewRegistry(cart.Config{})

	// Initialize Gin router
	router := httpgin.NewRouter(services, carts, idempotencyStore, logger)

	return &App{
		cfg:      cfg,
		logger:   logger,
		services: services,
		httpServer: &http.Server{
			Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler: router,
		},
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)

	// Start HTTP server
	g.Go(func() error {
		a.logger.Info("HTTP server listening", "host", a.cfg.Server.Host, "port", a.cfg.Server.Port)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	})

	// Expired-hold sweeper
	g.Go(func() error {
		if err := a.services.Sweeper.Run(gCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("shutting down HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return a.httpServer.Shutdown(ctx)
	})

	return g.Wait()
}
