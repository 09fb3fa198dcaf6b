package storage

import (
	"sort"
	"sync"

	"github.com/coinbit/exchange/internal/domain"
)

// Catalog is the set of known markets. Placement rejects orders for markets
// the catalog has never seen; the sync job keeps it current.
type Catalog struct {
	mu    sync.RWMutex
	coins map[string]domain.Coin
}

func NewCatalog() *Catalog {
	return &Catalog{
		coins: make(map[string]domain.Coin),
	}
}

func (c *Catalog) Upsert(coin domain.Coin) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.coins[coin.Market] = coin
}

func (c *Catalog) UpsertAll(coins []domain.Coin) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, coin := range coins {
		c.coins[coin.Market] = coin
	}
}

func (c *Catalog) Get(market string) (domain.Coin, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	coin, exists := c.coins[market]
	return coin, exists
}

func (c *Catalog) Exists(market string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, exists := c.coins[market]
	return exists
}

func (c *Catalog) Markets() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	markets := make([]string, 0, len(c.coins))
	for market := range c.coins {
		markets = append(markets, market)
	}
	sort.Strings(markets)
	return markets
}
