package domain

type OrderSide uint8

const (
	OrderSideUnspecified OrderSide = iota
	OrderSideBuy
	OrderSideSell
)

func (s OrderSide) String() string {
	switch s {
	case OrderSideBuy:
		return "BUY"
	case OrderSideSell:
		return "SELL"
	default:
		return "UNSPECIFIED"
	}
}

func ParseOrderSide(s string) (OrderSide, error) {
	switch s {
	case "BUY":
		return OrderSideBuy, nil
	case "SELL":
		return OrderSideSell, nil
	default:
		return OrderSideUnspecified, ErrInvalidOrderSide
	}
}
