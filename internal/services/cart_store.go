package services

import (
	"sync"

	"storefront/internal/models"
)

// CartStore holds the last server-confirmed cart of one user. Only CartService
// writes to it.
type CartStore struct {
	userID string
	cart   models.Cart
	mu     sync.RWMutex
}

// NewCartStore creates an empty store for userID.
func NewCartStore(userID string) *CartStore {
	return &CartStore{userID: userID, cart: models.NewCart(userID, nil)}
}

// Replace installs a new authoritative snapshot. Totals are recomputed from
// the items and lines without a positive quantity are dropped.
func (s *CartStore) Replace(cart models.Cart) {
	next := models.NewCart(s.userID, cart.Items)

	s.mu.Lock()
	s.cart = next
	s.mu.Unlock()
}

// Current returns a copy of the last snapshot.
func (s *CartStore) Current() models.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Clone()
}

// Clear installs an empty cart.
func (s *CartStore) Clear() {
	s.mu.Lock()
	s.cart = models.NewCart(s.userID, nil)
	s.mu.Unlock()
}
