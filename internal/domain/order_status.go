package domain

// OrderStatus transitions OPEN -> FILLED or OPEN -> CANCELLED and nothing
// else; both are terminal.
type OrderStatus uint8

const (
	OrderStatusUnspecified OrderStatus = iota
	OrderStatusOpen
	OrderStatusFilled
	OrderStatusCancelled
)

func (s OrderStatus) String() string {
	switch s {
	case OrderStatusOpen:
		return "OPEN"
	case OrderStatusFilled:
		return "FILLED"
	case OrderStatusCancelled:
		return "CANCELLED"
	default:
		return "UNSPECIFIED"
	}
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	switch s {
	case "OPEN":
		return OrderStatusOpen, nil
	case "FILLED":
		return OrderStatusFilled, nil
	case "CANCELLED":
		return OrderStatusCancelled, nil
	default:
		return OrderStatusUnspecified, ErrInvalidOrderStatus
	}
}
