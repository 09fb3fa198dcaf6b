package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/coinbit/exchange/internal/domain"
	"github.com/coinbit/exchange/internal/dto"
	"github.com/coinbit/exchange/internal/notify"
	"github.com/coinbit/exchange/internal/storage"
)

// TradingService owns order placement, cancellation and settlement. Orders
// settle against the cached market price only, never against each other.
type TradingService struct {
	orders     *storage.OrderStore
	ledger     *storage.Ledger
	prices     *storage.PriceCache
	catalog    *storage.Catalog
	publisher  notify.Publisher
	logger     *zap.Logger
	cashMarket string
}

func NewTradingService(
	orders *storage.OrderStore,
	ledger *storage.Ledger,
	prices *storage.PriceCache,
	catalog *storage.Catalog,
	publisher notify.Publisher,
	logger *zap.Logger,
	cashMarket string,
) *TradingService {
	return &TradingService{
		orders:     orders,
		ledger:     ledger,
		prices:     prices,
		catalog:    catalog,
		publisher:  publisher,
		logger:     logger,
		cashMarket: cashMarket,
	}
}

// Place validates the request and creates the order. A MARKET order, or a
// LIMIT order whose trigger already holds, settles inline before returning;
// insufficient funds on that path fails the whole placement and nothing is
// persisted. A resting LIMIT order is stored OPEN with no balance movement.
func (s *TradingService) Place(ctx context.Context, req dto.PlaceOrderRequest) (dto.OrderView, error) {
	order, err := s.buildOrder(req)
	if err != nil {
		return dto.OrderView{}, err
	}

	currentPrice, ok := s.prices.Get(order.Market)
	if !ok {
		s.logger.Warn("placement rejected, no market price",
			zap.String("market", order.Market),
			zap.String("user_id", order.UserID),
		)
		return dto.OrderView{}, domain.ErrNoMarketPrice
	}

	// Sellers must hold what they offer even if the limit is not yet met;
	// buyers are only checked when the order settles.
	if order.Side == domain.OrderSideSell {
		if s.ledger.Get(order.UserID, order.Market).LessThan(order.Volume) {
			return dto.OrderView{}, domain.ErrInsufficientFunds
		}
	}

	if order.Executable(currentPrice) {
		execPrice := order.Price
		if order.Type == domain.OrderTypeMarket {
			execPrice = currentPrice
		}
		if err := s.applyFill(&order, execPrice); err != nil {
			s.logger.Warn("inline settlement rejected",
				zap.String("user_id", order.UserID),
				zap.String("market", order.Market),
				zap.String("side", order.Side.String()),
				zap.Error(err),
			)
			return dto.OrderView{}, err
		}
	}

	s.orders.Add(order)

	s.logger.Info("order placed",
		zap.String("order_id", order.ID),
		zap.String("user_id", order.UserID),
		zap.String("market", order.Market),
		zap.String("side", order.Side.String()),
		zap.String("status", order.Status.String()),
	)

	view := dto.OrderViewFrom(order)
	if order.Status == domain.OrderStatusFilled {
		s.publishFill(view)
	}
	return view, nil
}

// Cancel transitions the order to CANCELLED if the caller owns it and it is
// still OPEN at write time. A concurrently settling sweep wins the race; the
// caller then sees ErrOrderNotOpen and the order stays FILLED.
func (s *TradingService) Cancel(ctx context.Context, req dto.CancelOrderRequest) (dto.OrderView, error) {
	order, exists := s.orders.GetByID(req.OrderID)
	if !exists {
		return dto.OrderView{}, domain.ErrOrderNotFound
	}
	if !order.IsOwnedBy(req.UserID) {
		s.logger.Warn("cancel denied, not the owner",
			zap.String("order_id", req.OrderID),
			zap.String("user_id", req.UserID),
		)
		return dto.OrderView{}, domain.ErrAccessDenied
	}

	var cancelled domain.Order
	err := s.orders.UpdateIfOpen(req.OrderID, func(order *domain.Order) error {
		order.Cancel()
		cancelled = *order
		return nil
	})
	if err != nil {
		return dto.OrderView{}, err
	}

	s.logger.Info("order cancelled",
		zap.String("order_id", cancelled.ID),
		zap.String("user_id", cancelled.UserID),
	)
	return dto.OrderViewFrom(cancelled), nil
}

// ListOrders returns the user's full order history, newest first.
func (s *TradingService) ListOrders(ctx context.Context, userID string) []dto.OrderView {
	orders := s.orders.ListByUser(userID)
	views := make([]dto.OrderView, 0, len(orders))
	for _, order := range orders {
		views = append(views, dto.OrderViewFrom(order))
	}
	return views
}

// SweepOpenOrders runs one settlement pass: every OPEN order whose trigger
// holds against the cached price settles at that price. Orders settle
// independently; a failure on one is logged and never stops the sweep. Returns
// the number of orders settled.
func (s *TradingService) SweepOpenOrders(ctx context.Context) int {
	settled := 0
	for _, order := range s.orders.ListOpen() {
		currentPrice, ok := s.prices.Get(order.Market)
		if !ok {
			continue
		}
		if !order.Executable(currentPrice) {
			continue
		}

		filled, err := s.settle(order.ID, currentPrice)
		if err != nil {
			if errors.Is(err, domain.ErrInsufficientFunds) {
				// The balance moved since placement; leave the order OPEN and
				// let a later sweep retry.
				s.logger.Warn("settlement skipped, insufficient balance",
					zap.String("order_id", order.ID),
					zap.String("user_id", order.UserID),
					zap.String("market", order.Market),
				)
			}
			continue
		}

		settled++
		s.logger.Info("order settled",
			zap.String("order_id", filled.ID),
			zap.String("user_id", filled.UserID),
			zap.String("market", filled.Market),
			zap.String("side", filled.Side.String()),
			zap.String("exec_price", currentPrice.String()),
		)
		s.publishFill(dto.OrderViewFrom(filled))
	}
	return settled
}

// settle moves balances and marks the order FILLED in one conditional write:
// the store lock covers the OPEN check, the ledger movement and the status
// change, so an order settles at most once.
func (s *TradingService) settle(orderID string, execPrice decimal.Decimal) (domain.Order, error) {
	var filled domain.Order
	err := s.orders.UpdateIfOpen(orderID, func(order *domain.Order) error {
		if err := s.applyFill(order, execPrice); err != nil {
			return err
		}
		filled = *order
		return nil
	})
	return filled, err
}

// applyFill executes the two ledger legs and marks the order filled. The
// debit leg goes first; if it fails nothing has moved.
func (s *TradingService) applyFill(order *domain.Order, execPrice decimal.Decimal) error {
	total := execPrice.Mul(order.Volume)

	switch order.Side {
	case domain.OrderSideBuy:
		if err := s.ledger.Decrease(order.UserID, s.cashMarket, total); err != nil {
			return err
		}
		_ = s.ledger.Increase(order.UserID, order.Market, order.Volume)
	case domain.OrderSideSell:
		if err := s.ledger.Decrease(order.UserID, order.Market, order.Volume); err != nil {
			return err
		}
		_ = s.ledger.Increase(order.UserID, s.cashMarket, total)
	default:
		return domain.ErrInvalidOrderSide
	}

	order.Fill(execPrice)
	return nil
}

func (s *TradingService) buildOrder(req dto.PlaceOrderRequest) (domain.Order, error) {
	if req.UserID == "" || req.Market == "" {
		return domain.Order{}, domain.ErrMissingField
	}

	side, err := domain.ParseOrderSide(req.Side)
	if err != nil {
		return domain.Order{}, err
	}
	ordType, err := domain.ParseOrderType(req.Type)
	if err != nil {
		return domain.Order{}, err
	}

	if req.Volume.LessThanOrEqual(decimal.Zero) {
		return domain.Order{}, domain.ErrInvalidVolume
	}
	if ordType == domain.OrderTypeLimit && req.Price.LessThanOrEqual(decimal.Zero) {
		return domain.Order{}, domain.ErrInvalidPrice
	}

	if req.Market == s.cashMarket || !s.catalog.Exists(req.Market) {
		return domain.Order{}, domain.ErrMarketNotAvailable
	}

	return domain.Order{
		ID:        uuid.NewString(),
		UserID:    req.UserID,
		Market:    req.Market,
		Side:      side,
		Type:      ordType,
		Status:    domain.OrderStatusOpen,
		Price:     req.Price,
		Volume:    req.Volume,
		CreatedAt: time.Now(),
	}, nil
}

func (s *TradingService) publishFill(view dto.OrderView) {
	s.publisher.Publish(fmt.Sprintf("orders/user/%s", view.UserID), view)
}
