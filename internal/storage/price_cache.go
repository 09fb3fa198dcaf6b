package storage

import (
	"sync"

	"github.com/shopspring/decimal"
)

// PriceCache holds the last observed trade price per market. Updates are
// last-writer-wins; the feed enforces no ordering, so a stale tick may
// transiently overwrite a fresher one.
type PriceCache struct {
	mu     sync.RWMutex
	prices map[string]decimal.Decimal
}

func NewPriceCache() *PriceCache {
	return &PriceCache{
		prices: make(map[string]decimal.Decimal),
	}
}

func (c *PriceCache) Update(market string, price decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.prices[market] = price
}

// Get returns the last known price. A missing entry means no tick has arrived
// for the market yet, not an error.
func (c *PriceCache) Get(market string) (decimal.Decimal, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	price, exists := c.prices[market]
	return price, exists
}

func (c *PriceCache) Snapshot() map[string]decimal.Decimal {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make(map[string]decimal.Decimal, len(c.prices))
	for market, price := range c.prices {
		result[market] = price
	}
	return result
}
