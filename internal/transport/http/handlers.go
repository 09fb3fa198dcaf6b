package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/coinbit/exchange/internal/domain"
	"github.com/coinbit/exchange/internal/dto"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type placeOrderBody struct {
	UserID string `json:"user_id"`
	Market string `json:"market"`
	Side   string `json:"side"`
	Type   string `json:"type"`
	Volume string `json:"volume"`
	Price  string `json:"price"`
}

type cancelOrderBody struct {
	OrderID string `json:"order_id"`
	UserID  string `json:"user_id"`
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	var body placeOrderBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	if !s.placeLimit.Allow(body.UserID) {
		writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "too many orders"})
		return
	}

	volume, err := decimal.NewFromString(body.Volume)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid volume format"})
		return
	}
	price := decimal.Zero
	if body.Price != "" {
		price, err = decimal.NewFromString(body.Price)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid price format"})
			return
		}
	}

	view, err := s.trading.Place(r.Context(), dto.PlaceOrderRequest{
		UserID: body.UserID,
		Market: body.Market,
		Side:   body.Side,
		Type:   body.Type,
		Volume: volume,
		Price:  price,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (s *Server) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	var body cancelOrderBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}
	if body.OrderID == "" || body.UserID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "order_id and user_id are required"})
		return
	}

	view, err := s.trading.Cancel(r.Context(), dto.CancelOrderRequest{
		OrderID: body.OrderID,
		UserID:  body.UserID,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]
	writeJSON(w, http.StatusOK, s.trading.ListOrders(r.Context(), userID))
}

func (s *Server) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]
	writeJSON(w, http.StatusOK, s.balances.GetBalance(r.Context(), userID))
}

func (s *Server) handleEnsureAccount(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]
	writeJSON(w, http.StatusOK, s.balances.EnsureAccount(r.Context(), userID))
}

func (s *Server) handleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]
	writeJSON(w, http.StatusOK, s.portfolio.GetPortfolio(r.Context(), userID))
}

func (s *Server) handleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")
	writeJSON(w, http.StatusOK, s.leaderboard.GetLeaderboard(r.Context(), search))
}

func (s *Server) handleGetMarkets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"markets": s.catalog.Markets()})
}

func (s *Server) handleGetPrices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.prices.Snapshot())
}

func (s *Server) handleGetCandles(w http.ResponseWriter, r *http.Request) {
	market := mux.Vars(r)["market"]

	unit := 1
	if v := r.URL.Query().Get("unit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			unit = parsed
		}
	}
	count := 200
	if v := r.URL.Query().Get("count"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			count = parsed
		}
	}

	candles, err := s.market.GetCandles(r.Context(), market, unit, count)
	if err != nil {
		s.logger.Warn("candle fetch failed",
			zap.String("market", market),
			zap.Error(err),
		)
		writeJSON(w, http.StatusBadGateway, errorBody{Error: "candle fetch failed"})
		return
	}
	writeJSON(w, http.StatusOK, candles)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	s.hub.Register(conn)
}

// writeError maps domain errors onto HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrMarketNotAvailable):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrAccessDenied):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrOrderNotOpen):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrInsufficientFunds):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNoMarketPrice):
		status = http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrInvalidPrice),
		errors.Is(err, domain.ErrInvalidVolume),
		errors.Is(err, domain.ErrInvalidOrderSide),
		errors.Is(err, domain.ErrInvalidOrderType),
		errors.Is(err, domain.ErrMissingField):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
