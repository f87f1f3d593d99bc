package repositories

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"storefront/internal/models"

	"github.com/google/uuid"
)

// MockCartRepository is an in-memory stand-in for the cart API. It behaves
// like the server: lines for the same product are merged and prices come from
// the catalog.
type MockCartRepository struct {
	products *MockProductRepository
	carts    map[string][]models.CartItem
	mu       sync.Mutex
}

// NewMockCartRepository creates a new instance of MockCartRepository.
func NewMockCartRepository(products *MockProductRepository) *MockCartRepository {
	return &MockCartRepository{
		products: products,
		carts:    make(map[string][]models.CartItem),
	}
}

// GetByUser returns the user's cart, creating an empty one on first access.
func (r *MockCartRepository) GetByUser(_ context.Context, sess models.Session) (models.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := make([]models.CartItem, len(r.carts[sess.UserID]))
	copy(items, r.carts[sess.UserID])
	return models.NewCart(sess.UserID, items), nil
}

// AddItem adds quantity units of productID, merging with an existing line.
func (r *MockCartRepository) AddItem(ctx context.Context, sess models.Session, productID string, quantity int) error {
	if quantity < 1 {
		return &APIError{Status: 400, Message: "quantity must be at least 1"}
	}
	product, err := r.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return &APIError{Status: 400, Message: fmt.Sprintf("product %s does not exist", productID)}
		}
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	items := r.carts[sess.UserID]
	for i := range items {
		if items[i].ProductID == productID {
			items[i].Quantity += quantity
			return nil
		}
	}
	r.carts[sess.UserID] = append(items, models.CartItem{
		ID:           uuid.New().String(),
		ProductID:    product.ID,
		ProductName:  product.Name,
		ProductImage: product.Image,
		UnitPrice:    product.Price,
		Quantity:     quantity,
	})
	return nil
}

// UpdateQuantity sets the quantity of a line.
func (r *MockCartRepository) UpdateQuantity(_ context.Context, sess models.Session, cartItemID string, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := r.carts[sess.UserID]
	for i := range items {
		if items[i].ID == cartItemID {
			items[i].Quantity = quantity
			return nil
		}
	}
	return fmt.Errorf("cart item %s: %w", cartItemID, ErrNotFound)
}

// RemoveItem deletes a line.
func (r *MockCartRepository) RemoveItem(_ context.Context, sess models.Session, cartItemID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := r.carts[sess.UserID]
	for i := range items {
		if items[i].ID == cartItemID {
			r.carts[sess.UserID] = append(items[:i:i], items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("cart item %s: %w", cartItemID, ErrNotFound)
}

// Clear empties the user's cart.
func (r *MockCartRepository) Clear(_ context.Context, sess models.Session) error {
	r.clearUser(sess.UserID)
	return nil
}

func (r *MockCartRepository) clearUser(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, userID)
}
