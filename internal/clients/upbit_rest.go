package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/coinbit/exchange/internal/domain"
)

const DefaultUpbitRESTURL = "https://api.upbit.com/v1"

// MarketClient is what the catalog sync and candle read model need from the
// exchange's public REST API.
type MarketClient interface {
	ListMarkets(ctx context.Context) ([]domain.Coin, error)
	GetCandles(ctx context.Context, market string, unit, count int) ([]Candle, error)
}

type Candle struct {
	Market    string          `json:"market"`
	Timestamp int64           `json:"timestamp"`
	Open      decimal.Decimal `json:"opening_price"`
	High      decimal.Decimal `json:"high_price"`
	Low       decimal.Decimal `json:"low_price"`
	Close     decimal.Decimal `json:"trade_price"`
	Volume    decimal.Decimal `json:"candle_acc_trade_volume"`
}

type Config struct {
	BaseURL        string
	Timeout        time.Duration
	RequestsPerSec float64
	Burst          int
	EnableBreaker  bool
}

// UpbitClient calls the Upbit public REST API. Requests are throttled with a
// token bucket and optionally guarded by a circuit breaker so a flapping
// upstream cannot pile up goroutines.
type UpbitClient struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

func NewUpbitClient(cfg Config, logger *zap.Logger) *UpbitClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultUpbitRESTURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RequestsPerSec <= 0 {
		cfg.RequestsPerSec = 5
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 5
	}

	c := &UpbitClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), cfg.Burst),
		logger:  logger,
	}
	if cfg.EnableBreaker {
		c.breaker = newBreaker()
	}
	return c
}

func newBreaker() *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "upbit-rest",
		Timeout: 30 * time.Second,
	})
}

type marketInfo struct {
	Market      string `json:"market"`
	KoreanName  string `json:"korean_name"`
	EnglishName string `json:"english_name"`
}

// ListMarkets returns every KRW-quoted market the exchange lists.
func (c *UpbitClient) ListMarkets(ctx context.Context) ([]domain.Coin, error) {
	var infos []marketInfo
	if err := c.getJSON(ctx, c.baseURL+"/market/all", &infos); err != nil {
		return nil, err
	}

	coins := make([]domain.Coin, 0, len(infos))
	for _, info := range infos {
		if !strings.HasPrefix(info.Market, "KRW-") {
			continue
		}
		coins = append(coins, domain.Coin{
			Market:      info.Market,
			KoreanName:  info.KoreanName,
			EnglishName: info.EnglishName,
		})
	}
	return coins, nil
}

// GetCandles returns up to count minute candles for the market.
func (c *UpbitClient) GetCandles(ctx context.Context, market string, unit, count int) ([]Candle, error) {
	url := fmt.Sprintf("%s/candles/minutes/%d?market=%s&count=%d", c.baseURL, unit, market, count)
	var candles []Candle
	if err := c.getJSON(ctx, url, &candles); err != nil {
		return nil, err
	}
	return candles, nil
}

func (c *UpbitClient) getJSON(ctx context.Context, url string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	do := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("upbit: unexpected status %d", resp.StatusCode)
		}
		return json.NewDecoder(resp.Body).Decode(out)
	}

	if c.breaker != nil {
		_, err := c.breaker.Execute(func() (any, error) {
			return nil, do()
		})
		return err
	}
	return do()
}
