package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/coinbit/exchange/internal/clients"
	"github.com/coinbit/exchange/internal/domain"
	"github.com/coinbit/exchange/internal/dto"
	"github.com/coinbit/exchange/internal/notify"
	"github.com/coinbit/exchange/internal/service"
	"github.com/coinbit/exchange/internal/storage"
)

type stubMarketClient struct {
	candles []clients.Candle
	err     error
}

func (s *stubMarketClient) ListMarkets(ctx context.Context) ([]domain.Coin, error) {
	return nil, nil
}

func (s *stubMarketClient) GetCandles(ctx context.Context, market string, unit, count int) ([]clients.Candle, error) {
	return s.candles, s.err
}

type serverEnv struct {
	server *Server
	ledger *storage.Ledger
	prices *storage.PriceCache
	market *stubMarketClient
}

func newServerEnv(t *testing.T, limiter *UserLimiter) *serverEnv {
	t.Helper()

	logger := zap.NewNop()
	orders := storage.NewOrderStore()
	ledger := storage.NewLedger()
	prices := storage.NewPriceCache()
	catalog := storage.NewCatalog()
	catalog.UpsertAll([]domain.Coin{
		{Market: "KRW", KoreanName: "원화"},
		{Market: "KRW-BTC", EnglishName: "Bitcoin"},
	})

	trading := service.NewTradingService(orders, ledger, prices, catalog, notify.NopPublisher{}, logger, "KRW")
	balances := service.NewBalanceService(ledger, "KRW", decimal.NewFromInt(10_000_000))
	portfolio := service.NewPortfolioService(ledger, orders, prices, catalog, "KRW")
	leaderboard := service.NewLeaderboardService(ledger, portfolio)
	market := &stubMarketClient{}

	server := NewServer(
		ServerConfig{},
		trading, balances, portfolio, leaderboard,
		prices, catalog, market,
		notify.NewHub(logger),
		limiter,
		logger,
	)
	return &serverEnv{server: server, ledger: ledger, prices: prices, market: market}
}

func (e *serverEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	e.server.router.ServeHTTP(rec, req)
	return rec
}

func orderBody(userID, market, side, typ, volume, price string) placeOrderBody {
	return placeOrderBody{
		UserID: userID,
		Market: market,
		Side:   side,
		Type:   typ,
		Volume: volume,
		Price:  price,
	}
}

func TestPlaceOrder_MarketBuyCreated(t *testing.T) {
	env := newServerEnv(t, nil)
	env.ledger.Reset("user-1", "KRW", decimal.NewFromInt(1_000_000))
	env.prices.Update("KRW-BTC", decimal.NewFromInt(100))

	rec := env.do(t, http.MethodPost, "/api/v1/orders", orderBody("user-1", "KRW-BTC", "BUY", "MARKET", "2.0", ""))
	require.Equal(t, http.StatusCreated, rec.Code)

	var view dto.OrderView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.NotEmpty(t, view.OrderID)
	assert.Equal(t, "FILLED", view.Status)
	assert.True(t, view.Price.Equal(decimal.NewFromInt(100)))
}

func TestPlaceOrder_ErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		body placeOrderBody
		want int
	}{
		{"unknown market", orderBody("user-1", "KRW-DOGE", "BUY", "MARKET", "1.0", ""), http.StatusNotFound},
		{"no market price", orderBody("user-1", "KRW-BTC", "BUY", "LIMIT", "1.0", "50"), http.StatusServiceUnavailable},
		{"bad volume format", orderBody("user-1", "KRW-BTC", "BUY", "MARKET", "two", ""), http.StatusBadRequest},
		{"missing user", orderBody("", "KRW-BTC", "BUY", "MARKET", "1.0", ""), http.StatusBadRequest},
		{"bad side", orderBody("user-1", "KRW-BTC", "HOLD", "MARKET", "1.0", ""), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newServerEnv(t, nil)
			rec := env.do(t, http.MethodPost, "/api/v1/orders", tt.body)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestPlaceOrder_InsufficientFunds(t *testing.T) {
	env := newServerEnv(t, nil)
	env.prices.Update("KRW-BTC", decimal.NewFromInt(100))

	rec := env.do(t, http.MethodPost, "/api/v1/orders", orderBody("user-1", "KRW-BTC", "BUY", "MARKET", "1.0", ""))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestPlaceOrder_MalformedBody(t *testing.T) {
	env := newServerEnv(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	env.server.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlaceOrder_RateLimited(t *testing.T) {
	env := newServerEnv(t, NewUserLimiter(1, 1))
	env.ledger.Reset("user-1", "KRW", decimal.NewFromInt(1_000_000))
	env.prices.Update("KRW-BTC", decimal.NewFromInt(100))

	body := orderBody("user-1", "KRW-BTC", "BUY", "MARKET", "1.0", "")
	rec := env.do(t, http.MethodPost, "/api/v1/orders", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/orders", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// Other users keep their own budget.
	env.ledger.Reset("user-2", "KRW", decimal.NewFromInt(1_000_000))
	rec = env.do(t, http.MethodPost, "/api/v1/orders", orderBody("user-2", "KRW-BTC", "BUY", "MARKET", "1.0", ""))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestCancelOrder(t *testing.T) {
	env := newServerEnv(t, nil)
	env.ledger.Reset("user-1", "KRW", decimal.NewFromInt(1_000_000))
	env.prices.Update("KRW-BTC", decimal.NewFromInt(100))

	rec := env.do(t, http.MethodPost, "/api/v1/orders", orderBody("user-1", "KRW-BTC", "BUY", "LIMIT", "1.0", "50"))
	require.Equal(t, http.StatusCreated, rec.Code)
	var placed dto.OrderView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &placed))

	rec = env.do(t, http.MethodPost, "/api/v1/orders/cancel", cancelOrderBody{OrderID: placed.OrderID, UserID: "intruder"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/orders/cancel", cancelOrderBody{OrderID: "no-such-order", UserID: "user-1"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/orders/cancel", cancelOrderBody{OrderID: placed.OrderID, UserID: "user-1"})
	require.Equal(t, http.StatusOK, rec.Code)

	// A second cancel hits a terminal order.
	rec = env.do(t, http.MethodPost, "/api/v1/orders/cancel", cancelOrderBody{OrderID: placed.OrderID, UserID: "user-1"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestEnsureAccountAndBalance(t *testing.T) {
	env := newServerEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/api/v1/users/user-1/account", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/users/user-1/balance", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var view dto.BalanceView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.True(t, view.Cash.Equal(decimal.NewFromInt(10_000_000)))
}

func TestGetMarketsAndPrices(t *testing.T) {
	env := newServerEnv(t, nil)
	env.prices.Update("KRW-BTC", decimal.NewFromInt(42))

	rec := env.do(t, http.MethodGet, "/api/v1/markets", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var markets struct {
		Markets []string `json:"markets"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &markets))
	assert.Equal(t, []string{"KRW", "KRW-BTC"}, markets.Markets)

	rec = env.do(t, http.MethodGet, "/api/v1/prices", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "KRW-BTC")
}

func TestGetCandles(t *testing.T) {
	env := newServerEnv(t, nil)
	env.market.candles = []clients.Candle{{Market: "KRW-BTC", Close: decimal.NewFromInt(100)}}

	rec := env.do(t, http.MethodGet, "/api/v1/markets/KRW-BTC/candles?unit=5&count=10", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	env.market.err = errors.New("upstream down")
	rec = env.do(t, http.MethodGet, "/api/v1/markets/KRW-BTC/candles", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestGetLeaderboard(t *testing.T) {
	env := newServerEnv(t, nil)
	for i := 1; i <= 3; i++ {
		env.ledger.Reset(fmt.Sprintf("user-%d", i), "KRW", decimal.NewFromInt(int64(i)*1_000))
	}

	rec := env.do(t, http.MethodGet, "/api/v1/leaderboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []dto.LeaderboardEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 3)
	assert.Equal(t, "user-3", entries[0].UserID)
}
