package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/coinbit/exchange/internal/clients"
	"github.com/coinbit/exchange/internal/domain"
	"github.com/coinbit/exchange/internal/storage"
)

// CatalogSync keeps the market catalog current from the exchange's listing
// API and guarantees the cash entry always exists.
type CatalogSync struct {
	catalog    *storage.Catalog
	client     clients.MarketClient
	cashMarket string
	interval   time.Duration
	logger     *zap.Logger
}

func NewCatalogSync(
	catalog *storage.Catalog,
	client clients.MarketClient,
	cashMarket string,
	interval time.Duration,
	logger *zap.Logger,
) *CatalogSync {
	if interval <= 0 {
		interval = time.Minute
	}
	return &CatalogSync{
		catalog:    catalog,
		client:     client,
		cashMarket: cashMarket,
		interval:   interval,
		logger:     logger,
	}
}

// Run syncs once immediately, then on every tick until ctx is cancelled.
func (s *CatalogSync) Run(ctx context.Context) {
	s.SyncOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SyncOnce(ctx)
		}
	}
}

// SyncOnce pulls the current market list. Failures keep the previous catalog;
// a stale catalog is better than an empty one.
func (s *CatalogSync) SyncOnce(ctx context.Context) {
	s.ensureCash()

	coins, err := s.client.ListMarkets(ctx)
	if err != nil {
		s.logger.Warn("catalog sync failed", zap.Error(err))
		return
	}
	if len(coins) == 0 {
		return
	}

	s.catalog.UpsertAll(coins)
	s.logger.Info("catalog synced", zap.Int("markets", len(coins)))
}

func (s *CatalogSync) ensureCash() {
	if !s.catalog.Exists(s.cashMarket) {
		s.catalog.Upsert(domain.Coin{
			Market:      s.cashMarket,
			KoreanName:  "원화",
			EnglishName: "Korean Won",
		})
	}
}
