package cart

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/listcart/backend/internal/domain"
)

// MemoryStore keeps one cart per user in process memory
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string][]domain.CartItem
}

// NewMemoryStore creates an empty cart store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string][]domain.CartItem)}
}

// AddItem adds an item to the user's cart. Adding the same product and
// variant again increases its quantity.
func (s *MemoryStore) AddItem(ctx context.Context, userID string, item domain.CartItem) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: user id is required", domain.ErrCartFailure)
	}
	if item.ProductID == "" || item.Quantity < 1 {
		return fmt.Errorf("%w: invalid item %q", domain.ErrCartFailure, item.ProductID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.carts[userID]
	for i := range items {
		if items[i].ProductID == item.ProductID && items[i].Variant == item.Variant {
			items[i].Quantity += item.Quantity
			items[i].Price = item.Price
			items[i].Total = domain.LineTotal(items[i].Quantity, items[i].Price)
			return nil
		}
	}

	item.Total = domain.LineTotal(item.Quantity, item.Price)
	s.carts[userID] = append(items, item)
	return nil
}

// Items returns a copy of the user's cart in insertion order
func (s *MemoryStore) Items(ctx context.Context, userID string) ([]domain.CartItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]domain.CartItem, len(s.carts[userID]))
	copy(items, s.carts[userID])
	return items, nil
}

// Total returns the sum of the user's line totals
func (s *MemoryStore) Total(ctx context.Context, userID string) (float64, error) {
	items, err := s.Items(ctx, userID)
	if err != nil {
		return 0, err
	}
	totals := make([]float64, 0, len(items))
	for _, item := range items {
		totals = append(totals, item.Total)
	}
	return domain.SumTotals(totals...), nil
}
