package storage

import (
	"sort"
	"sync"

	"github.com/coinbit/exchange/internal/domain"
)

// OrderStore keeps every order by id. Reads hand out copies; the only way to
// mutate a stored order is UpdateIfOpen, which holds the store lock across the
// status check and the write so cancel and settle cannot both win.
type OrderStore struct {
	mu     sync.RWMutex
	orders map[string]domain.Order
}

func NewOrderStore() *OrderStore {
	return &OrderStore{
		orders: make(map[string]domain.Order),
	}
}

func (s *OrderStore) Add(order domain.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orders[order.ID] = order
}

func (s *OrderStore) GetByID(id string) (domain.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, exists := s.orders[id]
	return order, exists
}

// UpdateIfOpen applies fn to the order only if it is still OPEN at write time.
// fn works on a copy; the copy replaces the stored order only when fn returns
// nil, so a failed mutation leaves the store untouched.
func (s *OrderStore) UpdateIfOpen(id string, fn func(order *domain.Order) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, exists := s.orders[id]
	if !exists {
		return domain.ErrOrderNotFound
	}
	if !order.IsOpen() {
		return domain.ErrOrderNotOpen
	}

	next := order
	if err := fn(&next); err != nil {
		return err
	}

	s.orders[id] = next
	return nil
}

// ListOpen returns every OPEN order, in no particular order.
func (s *OrderStore) ListOpen() []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Order, 0)
	for _, order := range s.orders {
		if order.IsOpen() {
			result = append(result, order)
		}
	}
	return result
}

// ListByUser returns the user's full order history, newest first.
func (s *OrderStore) ListByUser(userID string) []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Order, 0)
	for _, order := range s.orders {
		if order.UserID == userID {
			result = append(result, order)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

// ListFilled returns the user's filled orders for one market; the portfolio
// read model derives its investment basis from these.
func (s *OrderStore) ListFilled(userID, market string) []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Order, 0)
	for _, order := range s.orders {
		if order.UserID == userID && order.Market == market && order.Status == domain.OrderStatusFilled {
			result = append(result, order)
		}
	}
	return result
}

func (s *OrderStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.orders)
}
