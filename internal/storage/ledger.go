package storage

import (
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/coinbit/exchange/internal/domain"
)

type balanceKey struct {
	userID string
	market string
}

// Ledger holds every (user, market) balance. One mutex serializes all
// mutations, so check-then-decrease is a single critical section and no
// balance can ever be observed negative.
type Ledger struct {
	mu       sync.RWMutex
	balances map[balanceKey]decimal.Decimal
}

func NewLedger() *Ledger {
	return &Ledger{
		balances: make(map[balanceKey]decimal.Decimal),
	}
}

// GetOrCreate returns the current balance, zero-initializing it on first use.
func (l *Ledger) GetOrCreate(userID, market string) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := balanceKey{userID: userID, market: market}
	amount, exists := l.balances[key]
	if !exists {
		l.balances[key] = decimal.Zero
	}
	return amount
}

func (l *Ledger) Get(userID, market string) decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.balances[balanceKey{userID: userID, market: market}]
}

// Increase adds amount to the balance. Amount must be positive.
func (l *Ledger) Increase(userID, market string, amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return domain.ErrInvalidVolume
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	key := balanceKey{userID: userID, market: market}
	l.balances[key] = l.balances[key].Add(amount)
	return nil
}

// Decrease subtracts amount from the balance, failing with
// ErrInsufficientFunds before touching anything if the result would be
// negative.
func (l *Ledger) Decrease(userID, market string, amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return domain.ErrInvalidVolume
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	key := balanceKey{userID: userID, market: market}
	current := l.balances[key]
	if current.LessThan(amount) {
		return domain.ErrInsufficientFunds
	}
	l.balances[key] = current.Sub(amount)
	return nil
}

// BalancesOf returns every market the user holds, including zero balances.
func (l *Ledger) BalancesOf(userID string) map[string]decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make(map[string]decimal.Decimal)
	for key, amount := range l.balances {
		if key.userID == userID {
			result[key.market] = amount
		}
	}
	return result
}

// Users returns every user id the ledger has seen, sorted for stable
// iteration by the reset job and the leaderboard.
func (l *Ledger) Users() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	seen := make(map[string]struct{})
	for key := range l.balances {
		seen[key.userID] = struct{}{}
	}
	users := make([]string, 0, len(seen))
	for userID := range seen {
		users = append(users, userID)
	}
	sort.Strings(users)
	return users
}

// Reset wipes the user's coin balances and sets the cash balance to the given
// amount.
func (l *Ledger) Reset(userID, cashMarket string, amount decimal.Decimal) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key := range l.balances {
		if key.userID == userID && key.market != cashMarket {
			delete(l.balances, key)
		}
	}
	l.balances[balanceKey{userID: userID, market: cashMarket}] = amount
}
