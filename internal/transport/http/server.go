package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/coinbit/exchange/internal/clients"
	"github.com/coinbit/exchange/internal/notify"
	"github.com/coinbit/exchange/internal/service"
	"github.com/coinbit/exchange/internal/storage"
)

type ServerConfig struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
}

// Server exposes the trading core over REST plus a websocket endpoint for
// fill notifications.
type Server struct {
	cfg     ServerConfig
	router  *mux.Router
	httpSrv *http.Server
	logger  *zap.Logger

	trading     *service.TradingService
	balances    *service.BalanceService
	portfolio   *service.PortfolioService
	leaderboard *service.LeaderboardService
	prices      *storage.PriceCache
	catalog     *storage.Catalog
	market      clients.MarketClient
	hub         *notify.Hub
	placeLimit  *UserLimiter
}

func NewServer(
	cfg ServerConfig,
	trading *service.TradingService,
	balances *service.BalanceService,
	portfolio *service.PortfolioService,
	leaderboard *service.LeaderboardService,
	prices *storage.PriceCache,
	catalog *storage.Catalog,
	market clients.MarketClient,
	hub *notify.Hub,
	placeLimit *UserLimiter,
	logger *zap.Logger,
) *Server {
	s := &Server{
		cfg:         cfg,
		router:      mux.NewRouter(),
		logger:      logger,
		trading:     trading,
		balances:    balances,
		portfolio:   portfolio,
		leaderboard: leaderboard,
		prices:      prices,
		catalog:     catalog,
		market:      market,
		hub:         hub,
		placeLimit:  placeLimit,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/orders", s.handlePlaceOrder).Methods(http.MethodPost)
	api.HandleFunc("/orders/cancel", s.handleCancelOrder).Methods(http.MethodPost)
	api.HandleFunc("/users/{user_id}/orders", s.handleListOrders).Methods(http.MethodGet)
	api.HandleFunc("/users/{user_id}/balance", s.handleGetBalance).Methods(http.MethodGet)
	api.HandleFunc("/users/{user_id}/account", s.handleEnsureAccount).Methods(http.MethodPost)
	api.HandleFunc("/users/{user_id}/portfolio", s.handleGetPortfolio).Methods(http.MethodGet)
	api.HandleFunc("/leaderboard", s.handleGetLeaderboard).Methods(http.MethodGet)
	api.HandleFunc("/markets", s.handleGetMarkets).Methods(http.MethodGet)
	api.HandleFunc("/markets/{market}/candles", s.handleGetCandles).Methods(http.MethodGet)
	api.HandleFunc("/prices", s.handleGetPrices).Methods(http.MethodGet)

	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// Start blocks until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	handler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(s.router)

	s.httpSrv = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler: handler,
	}

	s.logger.Info("http server listening", zap.String("addr", s.httpSrv.Addr))
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	if s.cfg.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
		defer cancel()
	}
	return s.httpSrv.Shutdown(ctx)
}
