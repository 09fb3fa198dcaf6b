package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/coinbit/exchange/internal/domain"
	"github.com/coinbit/exchange/internal/dto"
	"github.com/coinbit/exchange/internal/storage"
)

var hundred = decimal.NewFromInt(100)

// PortfolioService derives per-coin valuation and profit from the ledger and
// the filled-order history. Pure read model; it never mutates state.
type PortfolioService struct {
	ledger     *storage.Ledger
	orders     *storage.OrderStore
	prices     *storage.PriceCache
	catalog    *storage.Catalog
	cashMarket string
}

func NewPortfolioService(
	ledger *storage.Ledger,
	orders *storage.OrderStore,
	prices *storage.PriceCache,
	catalog *storage.Catalog,
	cashMarket string,
) *PortfolioService {
	return &PortfolioService{
		ledger:     ledger,
		orders:     orders,
		prices:     prices,
		catalog:    catalog,
		cashMarket: cashMarket,
	}
}

func (s *PortfolioService) GetPortfolio(ctx context.Context, userID string) dto.PortfolioView {
	balances := s.ledger.BalancesOf(userID)

	cash := decimal.Zero
	holdings := make(map[string]decimal.Decimal)
	for market, amount := range balances {
		if market == s.cashMarket {
			cash = amount
		} else if amount.GreaterThan(decimal.Zero) {
			holdings[market] = amount
		}
	}

	view := dto.PortfolioView{
		UserID:          userID,
		TotalEval:       cash,
		Cash:            cash,
		Entries:         make([]dto.PortfolioEntry, 0, len(holdings)),
		TotalInvestment: decimal.Zero,
		TotalProfit:     decimal.Zero,
		ProfitPercent:   decimal.Zero,
	}

	for market, volume := range holdings {
		investment := s.investmentBasis(userID, market)
		currentPrice, _ := s.prices.Get(market)
		evalAmount := volume.Mul(currentPrice)
		profitAmount := evalAmount.Sub(investment)

		profitPercent := decimal.Zero
		if investment.GreaterThan(decimal.Zero) {
			profitPercent = profitAmount.DivRound(investment, 4).Mul(hundred)
		}

		view.TotalEval = view.TotalEval.Add(evalAmount)
		view.TotalInvestment = view.TotalInvestment.Add(investment)
		view.TotalProfit = view.TotalProfit.Add(profitAmount)

		name := market
		if coin, ok := s.catalog.Get(market); ok && coin.EnglishName != "" {
			name = coin.EnglishName
		}
		view.Entries = append(view.Entries, dto.PortfolioEntry{
			Symbol:        coinSymbol(market),
			Name:          name,
			Volume:        volume,
			CurrentPrice:  currentPrice,
			EvalAmount:    evalAmount,
			Investment:    investment,
			ProfitAmount:  profitAmount,
			ProfitPercent: profitPercent,
		})
	}

	if view.TotalInvestment.GreaterThan(decimal.Zero) {
		view.ProfitPercent = view.TotalProfit.DivRound(view.TotalInvestment, 4).Mul(hundred)
	}
	return view
}

// investmentBasis is filled buys minus filled sells for the market, clamped
// at zero so a net seller never shows a negative basis.
func (s *PortfolioService) investmentBasis(userID, market string) decimal.Decimal {
	buyTotal := decimal.Zero
	sellTotal := decimal.Zero
	for _, order := range s.orders.ListFilled(userID, market) {
		amount := order.Price.Mul(order.Volume)
		switch order.Side {
		case domain.OrderSideBuy:
			buyTotal = buyTotal.Add(amount)
		case domain.OrderSideSell:
			sellTotal = sellTotal.Add(amount)
		}
	}

	investment := buyTotal.Sub(sellTotal)
	if investment.LessThan(decimal.Zero) {
		return decimal.Zero
	}
	return investment
}

// coinSymbol strips the quote prefix from a market code ("KRW-BTC" -> "BTC").
func coinSymbol(market string) string {
	if _, symbol, found := strings.Cut(market, "-"); found {
		return symbol
	}
	return market
}
