package dto

import "github.com/shopspring/decimal"

type LeaderboardEntry struct {
	UserID        string          `json:"user_id"`
	TotalAsset    decimal.Decimal `json:"total_asset"`
	ProfitPercent decimal.Decimal `json:"profit_percent"`
}
