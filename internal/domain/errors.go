package domain

import "errors"

var (
	ErrInvalidOrderSide   = errors.New("invalid order side")
	ErrInvalidOrderType   = errors.New("invalid order type")
	ErrInvalidOrderStatus = errors.New("invalid order status")
	ErrInvalidPrice       = errors.New("price must be positive")
	ErrMissingField       = errors.New("required field is missing")
	ErrInvalidVolume      = errors.New("volume must be positive")
	ErrMarketNotAvailable = errors.New("market not found or not accessible")
	ErrOrderNotFound      = errors.New("order not found")
	ErrAccessDenied       = errors.New("access denied")
	ErrOrderNotOpen       = errors.New("order is not open")
	ErrInsufficientFunds  = errors.New("insufficient balance")
	ErrNoMarketPrice      = errors.New("no current price for market")
)
