package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrder_Executable(t *testing.T) {
	limit := decimal.NewFromInt(100)

	tests := []struct {
		name    string
		side    OrderSide
		typ     OrderType
		current int64
		want    bool
	}{
		{"market buy always", OrderSideBuy, OrderTypeMarket, 999, true},
		{"market sell always", OrderSideSell, OrderTypeMarket, 1, true},
		{"limit buy below limit", OrderSideBuy, OrderTypeLimit, 90, true},
		{"limit buy at limit", OrderSideBuy, OrderTypeLimit, 100, true},
		{"limit buy above limit", OrderSideBuy, OrderTypeLimit, 110, false},
		{"limit sell above limit", OrderSideSell, OrderTypeLimit, 110, true},
		{"limit sell at limit", OrderSideSell, OrderTypeLimit, 100, true},
		{"limit sell below limit", OrderSideSell, OrderTypeLimit, 90, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := Order{Side: tt.side, Type: tt.typ, Price: limit}
			assert.Equal(t, tt.want, order.Executable(decimal.NewFromInt(tt.current)))
		})
	}
}

func TestOrder_FillOverwritesPrice(t *testing.T) {
	order := Order{Status: OrderStatusOpen, Price: decimal.NewFromInt(100)}

	order.Fill(decimal.NewFromInt(95))
	assert.Equal(t, OrderStatusFilled, order.Status)
	assert.True(t, order.Price.Equal(decimal.NewFromInt(95)))
	assert.False(t, order.IsOpen())
}

func TestParseOrderSide(t *testing.T) {
	side, err := ParseOrderSide("BUY")
	require.NoError(t, err)
	assert.Equal(t, OrderSideBuy, side)

	_, err = ParseOrderSide("buy")
	assert.ErrorIs(t, err, ErrInvalidOrderSide)
	_, err = ParseOrderSide("")
	assert.ErrorIs(t, err, ErrInvalidOrderSide)
}
