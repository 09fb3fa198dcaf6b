package dto

import "github.com/shopspring/decimal"

type PortfolioEntry struct {
	Symbol        string          `json:"symbol"`
	Name          string          `json:"name"`
	Volume        decimal.Decimal `json:"volume"`
	CurrentPrice  decimal.Decimal `json:"current_price"`
	EvalAmount    decimal.Decimal `json:"eval_amount"`
	Investment    decimal.Decimal `json:"investment"`
	ProfitAmount  decimal.Decimal `json:"profit_amount"`
	ProfitPercent decimal.Decimal `json:"profit_percent"`
}

type PortfolioView struct {
	UserID          string           `json:"user_id"`
	TotalEval       decimal.Decimal  `json:"total_eval"`
	Cash            decimal.Decimal  `json:"cash"`
	Entries         []PortfolioEntry `json:"entries"`
	TotalInvestment decimal.Decimal  `json:"total_investment"`
	TotalProfit     decimal.Decimal  `json:"total_profit"`
	ProfitPercent   decimal.Decimal  `json:"profit_percent"`
}
