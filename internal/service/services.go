package service

import (
	"log/slog"
	"time"

	"github.com/yurkevych/seatstore/internal/discount"
	"github.com/yurkevych/seatstore/internal/gateway"
	postgres "github.com/yurkevych/seatstore/internal/repository/postgres"
	redis "github.com/yurkevych/seatstore/internal/repository/redis"
	"github.com/yurkevych/seatstore/internal/service/catalog"
	"github.com/yurkevych/seatstore/internal/service/checkout"
	"github.com/yurkevych/seatstore/internal/service/orders"
	"github.com/yurkevych/seatstore/internal/service/settlement"
	"github.com/yurkevych/seatstore/internal/service/sweep"
)

type Services struct {
	Checkout   *checkout.Service
	Settlement *settlement.Service
	Catalog    *catalog.Service
	Orders     *orders.Service
	Sweeper    *sweep.Sweeper
}

type Config struct {
	Checkout      checkout.Config
	Catalog       catalog.Config
	SweepInterval time.Duration
}

func NewServices(
	store *postgres.Store,
	cache *redis.Cache,
	pubsub *redis.OrdersPubSub,
	limiter *redis.SlidingWindowLimiter,
	gw gateway.Client,
	cfg Config,
	logger *slog.Logger,
) *Services {
	catalogSvc := catalog.New(store, cache, cfg.Catalog)

	settlementSvc := settlement.New(
		store.Orders(),
		store.Inventory(),
		settlement.NewRedisNotifier(cache, pubsub),
		logger,
	)

	checkoutSvc := checkout.New(
		store.Inventory(),
		store.Orders(),
		catalogSvc,
		discount.New(catalogSvc),
		settlementSvc,
		gw,
		limiter,
		cfg.Checkout,
		logger,
	)

	return &Services{
		Checkout:   checkoutSvc,
		Settlement: settlementSvc,
		Catalog:    catalogSvc,
		Orders:     orders.New(store),
		Sweeper:    sweep.New(store.Inventory(), cfg.SweepInterval, logger),
	}
}
