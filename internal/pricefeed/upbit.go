package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/coinbit/exchange/internal/storage"
)

const DefaultUpbitURL = "wss://api.upbit.com/websocket/v1"

// TickerEvent is one decoded price tick. The feed delivers trade and
// orderbook frames too; only the latest trade price matters to settlement.
type TickerEvent struct {
	Market string
	Price  decimal.Decimal
	At     time.Time
}

// Apply writes a tick into the cache: a plain last-writer-wins overwrite,
// kept separate from the transport so it can be tested without a socket.
func Apply(cache *storage.PriceCache, ev TickerEvent) {
	cache.Update(ev.Market, ev.Price)
}

// tickerFrame is the Upbit websocket ticker payload. trade_price arrives as a
// JSON number; json.Number keeps the exact decimal text.
type tickerFrame struct {
	Type       string      `json:"type"`
	Code       string      `json:"code"`
	TradePrice json.Number `json:"trade_price"`
	Timestamp  int64       `json:"timestamp"`
}

// UpbitFeed subscribes to Upbit ticker frames for a set of markets and turns
// them into TickerEvents applied to the price cache.
type UpbitFeed struct {
	url     string
	markets func() []string
	cache   *storage.PriceCache
	logger  *zap.Logger
}

// NewUpbitFeed builds the feed adapter. markets is called at subscribe time
// so a reconnect picks up catalog changes.
func NewUpbitFeed(url string, markets func() []string, cache *storage.PriceCache, logger *zap.Logger) *UpbitFeed {
	if url == "" {
		url = DefaultUpbitURL
	}
	return &UpbitFeed{
		url:     url,
		markets: markets,
		cache:   cache,
		logger:  logger,
	}
}

func (f *UpbitFeed) Name() string { return "upbit" }

func (f *UpbitFeed) URL() string { return f.url }

func (f *UpbitFeed) OnConnect(ctx context.Context, w *Worker) error {
	codes := f.markets()
	if len(codes) == 0 {
		return fmt.Errorf("no markets to subscribe")
	}

	msg := []map[string]any{
		{"ticket": fmt.Sprintf("coinbit-%d", time.Now().UnixNano())},
		{"type": "ticker", "codes": codes},
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return w.Write(websocket.TextMessage, data)
}

func (f *UpbitFeed) OnMessage(ctx context.Context, msg []byte) {
	ev, ok := f.Decode(msg)
	if !ok {
		return
	}
	Apply(f.cache, ev)
}

// Decode parses one frame into a TickerEvent. Non-ticker frames and
// malformed prices are dropped.
func (f *UpbitFeed) Decode(msg []byte) (TickerEvent, bool) {
	var frame tickerFrame
	if err := json.Unmarshal(msg, &frame); err != nil || frame.Type != "ticker" {
		return TickerEvent{}, false
	}

	price, err := decimal.NewFromString(frame.TradePrice.String())
	if err != nil {
		f.logger.Warn("ticker frame with bad price",
			zap.String("market", frame.Code),
			zap.String("trade_price", frame.TradePrice.String()),
		)
		return TickerEvent{}, false
	}

	return TickerEvent{
		Market: frame.Code,
		Price:  price,
		At:     time.UnixMilli(frame.Timestamp),
	}, true
}
