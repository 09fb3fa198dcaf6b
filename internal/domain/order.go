package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is a buy or sell request against a single market. Everything except
// Status and Price is immutable after creation; Price holds the limit price
// while the order is OPEN and is overwritten with the execution price on fill.
type Order struct {
	ID        string
	UserID    string
	Market    string
	Side      OrderSide
	Type      OrderType
	Status    OrderStatus
	Price     decimal.Decimal
	Volume    decimal.Decimal
	CreatedAt time.Time
}

func (o *Order) IsOwnedBy(userID string) bool {
	return o.UserID == userID
}

func (o *Order) IsOpen() bool {
	return o.Status == OrderStatusOpen
}

// Fill marks the order filled at the price it actually executed at.
func (o *Order) Fill(execPrice decimal.Decimal) {
	o.Status = OrderStatusFilled
	o.Price = execPrice
}

func (o *Order) Cancel() {
	o.Status = OrderStatusCancelled
}

// Executable reports whether the order may settle against the current market
// price: MARKET orders always, LIMIT BUY when the market is at or below the
// limit, LIMIT SELL when at or above.
func (o *Order) Executable(currentPrice decimal.Decimal) bool {
	if o.Type == OrderTypeMarket {
		return true
	}
	switch o.Side {
	case OrderSideBuy:
		return currentPrice.LessThanOrEqual(o.Price)
	case OrderSideSell:
		return currentPrice.GreaterThanOrEqual(o.Price)
	default:
		return false
	}
}
