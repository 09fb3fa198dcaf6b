package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/coinbit/exchange/internal/storage"
)

// ResetJob periodically wipes every user's coin balances and restores the
// cash balance to the configured starting amount. Open orders are left alone;
// they simply fail settlement until funded again.
type ResetJob struct {
	ledger      *storage.Ledger
	cashMarket  string
	initialCash decimal.Decimal
	interval    time.Duration
	logger      *zap.Logger
}

func NewResetJob(
	ledger *storage.Ledger,
	cashMarket string,
	initialCash decimal.Decimal,
	interval time.Duration,
	logger *zap.Logger,
) *ResetJob {
	return &ResetJob{
		ledger:      ledger,
		cashMarket:  cashMarket,
		initialCash: initialCash,
		interval:    interval,
		logger:      logger,
	}
}

// Run blocks until ctx is cancelled.
func (j *ResetJob) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.ResetAll()
		}
	}
}

// ResetAll resets every known user immediately.
func (j *ResetJob) ResetAll() {
	users := j.ledger.Users()
	for _, userID := range users {
		j.ledger.Reset(userID, j.cashMarket, j.initialCash)
	}
	j.logger.Info("balances reset",
		zap.Int("users", len(users)),
		zap.String("initial_cash", j.initialCash.String()),
	)
}
