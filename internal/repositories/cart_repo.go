package repositories

import (
	"context"

	"storefront/internal/models"
)

// CartRepository defines the cart API used by the sync engine. Mutations do
// not return the cart; callers re-fetch it.
type CartRepository interface {
	GetByUser(ctx context.Context, sess models.Session) (models.Cart, error)
	AddItem(ctx context.Context, sess models.Session, productID string, quantity int) error
	UpdateQuantity(ctx context.Context, sess models.Session, cartItemID string, quantity int) error
	RemoveItem(ctx context.Context, sess models.Session, cartItemID string) error
	Clear(ctx context.Context, sess models.Session) error
}
