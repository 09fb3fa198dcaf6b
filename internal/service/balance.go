package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/coinbit/exchange/internal/dto"
	"github.com/coinbit/exchange/internal/storage"
)

// BalanceService serves the balance read model and funds new accounts.
// Identity is taken as given; any user id the transport hands us is valid.
type BalanceService struct {
	ledger      *storage.Ledger
	cashMarket  string
	initialCash decimal.Decimal
}

func NewBalanceService(ledger *storage.Ledger, cashMarket string, initialCash decimal.Decimal) *BalanceService {
	return &BalanceService{
		ledger:      ledger,
		cashMarket:  cashMarket,
		initialCash: initialCash,
	}
}

// EnsureAccount seeds the cash balance for a user the ledger has never seen.
// Existing accounts are left untouched.
func (s *BalanceService) EnsureAccount(ctx context.Context, userID string) dto.BalanceView {
	if len(s.ledger.BalancesOf(userID)) == 0 {
		s.ledger.Reset(userID, s.cashMarket, s.initialCash)
	}
	return s.GetBalance(ctx, userID)
}

// GetBalance splits the cash leg out of the user's holdings.
func (s *BalanceService) GetBalance(ctx context.Context, userID string) dto.BalanceView {
	balances := s.ledger.BalancesOf(userID)

	view := dto.BalanceView{
		UserID: userID,
		Cash:   decimal.Zero,
		Coins:  make(map[string]decimal.Decimal),
	}
	for market, amount := range balances {
		if market == s.cashMarket {
			view.Cash = amount
		} else {
			view.Coins[market] = amount
		}
	}
	return view
}
