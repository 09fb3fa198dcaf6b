package dto

import "github.com/shopspring/decimal"

// BalanceView separates the cash leg from coin holdings, as the UI consumes
// them.
type BalanceView struct {
	UserID string                     `json:"user_id"`
	Cash   decimal.Decimal            `json:"cash"`
	Coins  map[string]decimal.Decimal `json:"coins"`
}
