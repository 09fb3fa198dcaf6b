package pricefeed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handler supplies the feed-specific half of a websocket worker: where to
// connect, what to send on connect, and what to do with each frame.
type Handler interface {
	Name() string
	URL() string
	OnConnect(ctx context.Context, w *Worker) error
	OnMessage(ctx context.Context, msg []byte)
}

// Worker keeps one websocket connection alive: it reconnects with capped
// exponential backoff, applies a read deadline, and serializes writes. A
// dropped connection never crashes the cache; readers keep serving the last
// known prices until the feed is back.
type Worker struct {
	handler Handler
	logger  *zap.Logger

	mu      sync.RWMutex
	conn    *websocket.Conn
	writeMu sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	ReadTimeout time.Duration
}

func NewWorker(handler Handler, logger *zap.Logger) *Worker {
	return &Worker{
		handler:     handler,
		logger:      logger,
		ReadTimeout: 60 * time.Second,
	}
}

// Start launches the connect-read loop and returns immediately.
func (w *Worker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go w.runLoop(ctx)
}

// Stop tears the connection down and waits for the loop to exit.
func (w *Worker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.closeConn()
	w.wg.Wait()
}

func (w *Worker) runLoop(ctx context.Context) {
	defer w.wg.Done()
	retry := 0

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := w.connect(ctx); err != nil {
			w.logger.Warn("feed connect failed",
				zap.String("feed", w.handler.Name()),
				zap.Int("retry", retry),
				zap.Error(err),
			)
			delay := backoff(retry)
			retry++

			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
				continue
			}
		}

		retry = 0
		w.readLoop(ctx)
	}
}

func (w *Worker) connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}

	conn, _, err := dialer.DialContext(ctx, w.handler.URL(), nil)
	if err != nil {
		return err
	}

	w.mu.Lock()
	w.conn = conn
	w.mu.Unlock()

	if err := w.handler.OnConnect(ctx, w); err != nil {
		w.closeConn()
		return fmt.Errorf("subscribe failed: %w", err)
	}

	w.logger.Info("feed connected", zap.String("feed", w.handler.Name()))
	return nil
}

func (w *Worker) readLoop(ctx context.Context) {
	for {
		w.mu.RLock()
		conn := w.conn
		w.mu.RUnlock()
		if conn == nil {
			return
		}

		conn.SetReadDeadline(time.Now().Add(w.ReadTimeout))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			w.logger.Warn("feed read error",
				zap.String("feed", w.handler.Name()),
				zap.Error(err),
			)
			w.closeConn()
			return
		}

		w.handler.OnMessage(ctx, msg)
	}
}

// Write sends one frame; safe for concurrent use.
func (w *Worker) Write(msgType int, data []byte) error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()

	w.mu.RLock()
	conn := w.conn
	w.mu.RUnlock()
	if conn == nil {
		return fmt.Errorf("feed not connected")
	}

	return conn.WriteMessage(msgType, data)
}

func (w *Worker) closeConn() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn != nil {
		w.conn.Close()
		w.conn = nil
	}
}
