package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/coinbit/exchange/internal/clients"
	"github.com/coinbit/exchange/internal/config"
	"github.com/coinbit/exchange/internal/logger"
	"github.com/coinbit/exchange/internal/notify"
	"github.com/coinbit/exchange/internal/pricefeed"
	"github.com/coinbit/exchange/internal/service"
	"github.com/coinbit/exchange/internal/storage"
	transporthttp "github.com/coinbit/exchange/internal/transport/http"
)

const defaultInitialCash = "10000000"

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	flag.Parse()

	_ = godotenv.Load()

	cfg := config.MustLoad(*configPath)

	l, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer l.Sync()

	l.Info("starting exchange core",
		zap.String("config", *configPath),
	)

	cashMarket := cfg.Trading.CashMarket
	if cashMarket == "" {
		cashMarket = "KRW"
	}
	initialCashStr := cfg.Trading.InitialCash
	if initialCashStr == "" {
		initialCashStr = defaultInitialCash
	}
	initialCash, err := decimal.NewFromString(initialCashStr)
	if err != nil {
		log.Fatalf("invalid initial_cash: %v", err)
	}

	orders := storage.NewOrderStore()
	ledger := storage.NewLedger()
	prices := storage.NewPriceCache()
	catalog := storage.NewCatalog()

	hub := notify.NewHub(l)

	trading := service.NewTradingService(orders, ledger, prices, catalog, hub, l, cashMarket)
	balances := service.NewBalanceService(ledger, cashMarket, initialCash)
	portfolio := service.NewPortfolioService(ledger, orders, prices, catalog, cashMarket)
	leaderboard := service.NewLeaderboardService(ledger, portfolio)

	marketClient := clients.NewUpbitClient(clients.Config{
		BaseURL:        cfg.Catalog.BaseURL,
		Timeout:        cfg.Catalog.Timeout,
		RequestsPerSec: cfg.Catalog.RequestsPerSecond,
		Burst:          cfg.Catalog.Burst,
		EnableBreaker:  cfg.Catalog.EnableBreaker,
	}, l)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalogSync := service.NewCatalogSync(catalog, marketClient, cashMarket, cfg.Catalog.SyncInterval, l)
	catalogSync.SyncOnce(ctx)
	go catalogSync.Run(ctx)

	if cfg.Feed.Enabled {
		feed := pricefeed.NewUpbitFeed(cfg.Feed.URL, func() []string {
			markets := make([]string, 0)
			for _, market := range catalog.Markets() {
				if market != cashMarket {
					markets = append(markets, market)
				}
			}
			return markets
		}, prices, l)

		worker := pricefeed.NewWorker(feed, l)
		worker.Start(ctx)
		defer worker.Stop()
	}

	scheduler := service.NewScheduler(trading, cfg.Scheduler.Interval, l)
	go scheduler.Run(ctx)

	if cfg.Reset.Enabled {
		resetJob := service.NewResetJob(ledger, cashMarket, initialCash, cfg.Reset.Interval, l)
		go resetJob.Run(ctx)
	}

	var placeLimit *transporthttp.UserLimiter
	if cfg.RateLimit.Enabled {
		placeLimit = transporthttp.NewUserLimiter(cfg.RateLimit.PerUser.OrdersPerMinute, cfg.RateLimit.PerUser.Burst)
		l.Info("per-user rate limiting enabled")
	}

	server := transporthttp.NewServer(
		transporthttp.ServerConfig{
			Host:            cfg.Server.Host,
			Port:            cfg.Server.Port,
			ShutdownTimeout: cfg.Server.ShutdownTimeout,
		},
		trading, balances, portfolio, leaderboard,
		prices, catalog, marketClient, hub, placeLimit, l,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case <-ctx.Done():
		l.Info("shutting down")
		if err := server.Shutdown(context.Background()); err != nil {
			l.Warn("server shutdown error", zap.Error(err))
		}
	case err := <-errCh:
		if err != nil {
			log.Fatalf("server error: %v", err)
		}
	}
}
