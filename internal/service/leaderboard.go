package service

import (
	"context"
	"sort"
	"strings"

	"github.com/coinbit/exchange/internal/dto"
	"github.com/coinbit/exchange/internal/storage"
)

// LeaderboardService ranks every user the ledger has seen by total asset
// value: coin holdings at current prices plus cash.
type LeaderboardService struct {
	ledger    *storage.Ledger
	portfolio *PortfolioService
}

func NewLeaderboardService(ledger *storage.Ledger, portfolio *PortfolioService) *LeaderboardService {
	return &LeaderboardService{
		ledger:    ledger,
		portfolio: portfolio,
	}
}

// GetLeaderboard returns entries sorted by total asset descending. A
// non-empty search keeps only user ids containing it, case-insensitive.
func (s *LeaderboardService) GetLeaderboard(ctx context.Context, search string) []dto.LeaderboardEntry {
	entries := make([]dto.LeaderboardEntry, 0)

	for _, userID := range s.ledger.Users() {
		if !matchesSearch(userID, search) {
			continue
		}

		view := s.portfolio.GetPortfolio(ctx, userID)
		entries = append(entries, dto.LeaderboardEntry{
			UserID:        userID,
			TotalAsset:    view.TotalEval.Truncate(0),
			ProfitPercent: view.ProfitPercent.Round(2),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TotalAsset.GreaterThan(entries[j].TotalAsset)
	})
	return entries
}

func matchesSearch(userID, search string) bool {
	if strings.TrimSpace(search) == "" {
		return true
	}
	return strings.Contains(strings.ToLower(userID), strings.ToLower(search))
}
