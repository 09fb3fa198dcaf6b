package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Scheduler drives the settlement sweep with a fixed delay: each sweep runs
// to completion before the next one is armed, so sweeps never overlap. A slow
// sweep delays the next tick, it never skips it.
type Scheduler struct {
	trading  *TradingService
	interval time.Duration
	logger   *zap.Logger
}

func NewScheduler(trading *TradingService, interval time.Duration, logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Second
	}
	return &Scheduler{
		trading:  trading,
		interval: interval,
		logger:   logger,
	}
}

// Run blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("settlement scheduler started",
		zap.Duration("interval", s.interval),
	)

	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("settlement scheduler stopped")
			return
		case <-timer.C:
			settled := s.trading.SweepOpenOrders(ctx)
			if settled > 0 {
				s.logger.Info("sweep settled orders", zap.Int("count", settled))
			}
			timer.Reset(s.interval)
		}
	}
}
