package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"cryptofolio/internal/application/container"
	"cryptofolio/internal/application/port"
	"cryptofolio/internal/infrastructure/cache"
	"cryptofolio/internal/infrastructure/config"
	"cryptofolio/internal/infrastructure/feed/binance"
	"cryptofolio/internal/infrastructure/logger"
	"cryptofolio/internal/infrastructure/storage/composite"
	"cryptofolio/internal/infrastructure/storage/postgres"
	"cryptofolio/internal/infrastructure/storage/redis"
	"cryptofolio/internal/infrastructure/storage/sqlite"
)

func main() {
	logger.Setup()

	configPath := flag.String("config", "configs/config.toml", "path to config.toml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("config", *configPath).Msg("load config failed")
	}
	logger.SetLevel(cfg.App.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.New(cfg.Storage.SqlitePath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Storage.SqlitePath).Msg("open sqlite failed")
	}
	defer store.Close()

	// history: sqlite primary, optional postgres second sink
	var history port.PriceHistory = store
	if cfg.Storage.PostgresDSN != "" {
		pg, err := postgres.New(cfg.Storage.PostgresDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("open postgres failed")
		}
		defer pg.Close()
		history = composite.NewHistory(store, pg)
	}

	var priceCache port.PriceCache = cache.NewMemory()
	if cfg.Redis.Enabled {
		rdb := goredis.NewClient(&goredis.Options{Addr: cfg.Redis.Addr})
		defer rdb.Close()
		priceCache = redis.NewCache(rdb, cfg.Redis.Prefix, cfg.RedisTTL())
	}

	feed := binance.NewTickerFeed(cfg.Feed.WsURL, cfg.ReconnectDelay())

	c := container.New(container.Deps{
		Feed:             feed,
		Cache:            priceCache,
		History:          history,
		Ledger:           store,
		Portfolios:       store.Portfolios(),
		Transactions:     store.Transactions(),
		Alerts:           store.Alerts(),
		Symbols:          cfg.Symbols.List,
		HistoryQueueSize: cfg.App.HistoryQueueSize,
	})

	log.Info().
		Str("config", *configPath).
		Int("symbols", len(cfg.Symbols.List)).
		Bool("redis_cache", cfg.Redis.Enabled).
		Msg("cryptofolio started")

	if err := c.IngestService().Run(ctx); err != nil && ctx.Err() == nil {
		log.Error().Err(err).Msg("ingest service exited")
	}
}
