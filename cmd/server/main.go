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

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/kjannette/trahn-prices/internal/api"
	"github.com/kjannette/trahn-prices/internal/cache"
	"github.com/kjannette/trahn-prices/internal/config"
	"github.com/kjannette/trahn-prices/internal/db"
	"github.com/kjannette/trahn-prices/internal/ethereum"
	"github.com/kjannette/trahn-prices/internal/external"
	"github.com/kjannette/trahn-prices/internal/history"
	"github.com/kjannette/trahn-prices/internal/notifications"
	"github.com/kjannette/trahn-prices/internal/quotes"
	"github.com/kjannette/trahn-prices/internal/repository"
	"github.com/kjannette/trahn-prices/internal/scheduler"
	"github.com/kjannette/trahn-prices/internal/search"
)

const banner = `
╔══════════════════════════════════════╗
║        TRAHN Price Service v0.3      ║
║                                      ║
╚══════════════════════════════════════╝
`

func main() {
	fmt.Print(banner)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}
	cfg.ConfigureLogging()

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	cfg.Print()
	log := logrus.WithField("component", "main")

	// Graceful shutdown context
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Cache
	store, err := cache.New(cfg.CachePolicies)
	if err != nil {
		log.WithError(err).Fatal("cache setup failed")
	}
	if err := store.Start(cfg.SweepSchedule); err != nil {
		log.WithError(err).Fatal("cache sweeper failed to start")
	}
	defer store.Stop()

	// Providers
	finnhub := external.NewFinnhubClient(external.FinnhubOptions{
		APIKey:            cfg.Finnhub.APIKey,
		BaseURL:           cfg.Finnhub.BaseURL,
		Timeout:           cfg.Finnhub.Timeout,
		RequestsPerMinute: cfg.Finnhub.RequestsPerMinute,
		Burst:             cfg.Finnhub.Burst,
	})
	coingecko := external.NewCoinGeckoClient(external.CoinGeckoOptions{
		APIKey:            cfg.CoinGecko.APIKey,
		BaseURL:           cfg.CoinGecko.BaseURL,
		Timeout:           cfg.CoinGecko.Timeout,
		RequestsPerMinute: cfg.CoinGecko.RequestsPerMinute,
		Burst:             cfg.CoinGecko.Burst,
	})
	yahoo := external.NewYahooClient(external.YahooOptions{
		BaseURL:           cfg.Yahoo.BaseURL,
		Timeout:           cfg.Yahoo.Timeout,
		RequestsPerMinute: cfg.Yahoo.RequestsPerMinute,
		Burst:             cfg.Yahoo.Burst,
	})
	alphaVantage := external.NewAlphaVantageClient(external.AlphaVantageOptions{
		APIKey:            cfg.AlphaVantage.APIKey,
		BaseURL:           cfg.AlphaVantage.BaseURL,
		Timeout:           cfg.AlphaVantage.Timeout,
		RequestsPerMinute: cfg.AlphaVantage.RequestsPerMinute,
		Burst:             cfg.AlphaVantage.Burst,
	})

	// Notifications
	notify := notifications.NewSender(cfg.WebhookURL, cfg.BotName)
	alerter := notifications.NewAlerter(notify, cfg.AlertCooldown)
	defer alerter.Wait()

	var cryptoQuotes external.CryptoQuoter = coingecko
	if cfg.EthRPCURL != "" {
		pricer, err := ethereum.Dial(ctx, cfg.EthRPCURL, ethereum.PoolOptions{
			Router:        cfg.UniswapRouterAddress,
			WETH:          cfg.WETHAddress,
			QuoteToken:    cfg.QuoteTokenAddress,
			QuoteDecimals: cfg.QuoteTokenDecimals,
		})
		if err != nil {
			log.WithError(err).Warn("on-chain ETH fallback disabled")
		} else {
			defer pricer.Close()
			cryptoQuotes = &external.FallbackCrypto{
				Primary:        coingecko,
				Secondary:      pricer,
				OnPrimaryError: alerter.Observe,
			}
		}
	}

	quoteOpts := []quotes.Option{
		quotes.WithConcurrency(cfg.BulkConcurrency),
		quotes.WithErrorHook(alerter.Observe),
	}

	// Database (optional)
	var (
		pool      *pgxpool.Pool
		quoteRepo *repository.QuoteRepo
		holdings  *repository.HoldingsRepo
	)
	if cfg.DBEnabled {
		log.Infof("connecting to %s:%d/%s", cfg.DBHost, cfg.DBPort, cfg.DBName)
		pool, err = db.Connect(ctx, cfg.DSN(), db.PoolConfig{MaxConns: int32(cfg.DBMaxConns)})
		if err != nil {
			log.WithError(err).Fatal("database connection failed")
		}
		defer func() {
			pool.Close()
			log.Info("connection pool closed")
		}()
		if err := db.Migrate(ctx, pool); err != nil {
			log.WithError(err).Fatal("schema migration failed")
		}
		quoteRepo = repository.NewQuoteRepo(pool)
		holdings = repository.NewHoldingsRepo(pool)
		quoteOpts = append(quoteOpts, quotes.WithRecorder(quoteRepo))
	} else {
		log.Info("database disabled, quotes will not be persisted")
	}

	quoteSvc := quotes.NewService(store, finnhub, cryptoQuotes, quoteOpts...)
	defer quoteSvc.Close()

	// Seed the cache from recent snapshots.
	if quoteRepo != nil {
		snaps, err := quoteRepo.LatestSince(ctx, time.Now().Add(-cfg.SeedWindow))
		if err != nil {
			log.WithError(err).Warn("snapshot seeding skipped")
		} else {
			log.Infof("seeded %d of %d snapshots", quoteSvc.Seed(snaps), len(snaps))
		}
	}

	historySvc := history.NewAggregator(store, yahoo, coingecko,
		history.WithDelays(cfg.HistoryStockDelay, cfg.HistoryCryptoDelay))
	searchSvc := search.NewService(store, alphaVantage)

	deps := api.Deps{Quotes: quoteSvc, History: historySvc, Search: searchSvc}
	if pool != nil {
		deps.Holdings = holdings
		deps.DB = pool
	}

	// 1. API server
	srv := api.NewServer(deps, cfg.Port, cfg.APIKey, cfg.CORSAllowOrigin)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("API server error")
		}
	}()

	// 2. Cache warmer
	var warmer *scheduler.Warmer
	if cfg.WarmEnabled && holdings != nil {
		warmer = scheduler.NewWarmer(holdings, quoteSvc, scheduler.WarmerConfig{
			Interval:  cfg.WarmInterval,
			Retention: cfg.SnapshotRetention,
			Pruner:    quoteRepo,
		})
		warmer.Start()
	} else {
		log.Info("cache warmer skipped")
	}

	log.Info("all services started")

	<-ctx.Done()
	log.Info("shutting down gracefully")

	if warmer != nil {
		warmer.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("API shutdown error")
	}
	log.Info("API server closed")
}
