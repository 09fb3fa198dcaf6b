package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/coinbit/exchange/internal/domain"
)

// PlaceOrderRequest carries a validated-at-the-edge placement. Price is
// required for LIMIT orders and ignored for MARKET orders.
type PlaceOrderRequest struct {
	UserID string
	Market string
	Side   string
	Type   string
	Volume decimal.Decimal
	Price  decimal.Decimal
}

type CancelOrderRequest struct {
	OrderID string
	UserID  string
}

// OrderView is the full projected order sent to callers and pushed to the
// notification sink on fill.
type OrderView struct {
	OrderID   string          `json:"order_id"`
	UserID    string          `json:"user_id"`
	Market    string          `json:"market"`
	Side      string          `json:"side"`
	Type      string          `json:"type"`
	Status    string          `json:"status"`
	Price     decimal.Decimal `json:"price"`
	Volume    decimal.Decimal `json:"volume"`
	CreatedAt time.Time       `json:"created_at"`
}

func OrderViewFrom(order domain.Order) OrderView {
	return OrderView{
		OrderID:   order.ID,
		UserID:    order.UserID,
		Market:    order.Market,
		Side:      order.Side.String(),
		Type:      order.Type.String(),
		Status:    order.Status.String(),
		Price:     order.Price,
		Volume:    order.Volume,
		CreatedAt: order.CreatedAt,
	}
}
