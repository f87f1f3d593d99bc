package repositories

import (
	"context"
	"fmt"
	"net/url"

	"storefront/internal/models"

	"github.com/gofiber/fiber/v2"
)

// APICartRepository is a CartRepository backed by the REST API.
type APICartRepository struct {
	api *APIClient
}

// NewAPICartRepository creates a new APICartRepository.
func NewAPICartRepository(api *APIClient) *APICartRepository {
	return &APICartRepository{api: api}
}

// GetByUser fetches the authoritative cart of the session user.
func (r *APICartRepository) GetByUser(ctx context.Context, sess models.Session) (models.Cart, error) {
	var raw []byte
	path := "/cart/" + url.PathEscape(sess.UserID)
	if err := r.api.do(ctx, fiber.MethodGet, path, sess.Token, nil, nil, &raw); err != nil {
		return models.Cart{}, fmt.Errorf("fetch cart: %w", err)
	}
	items, err := decodeList[models.CartItem](raw, "items", "cartItems", "content")
	if err != nil {
		return models.Cart{}, fmt.Errorf("fetch cart: %w", err)
	}
	return models.NewCart(sess.UserID, items), nil
}

// AddItem adds quantity units of productID.
func (r *APICartRepository) AddItem(ctx context.Context, sess models.Session, productID string, quantity int) error {
	body := map[string]interface{}{
		"userId":    sess.UserID,
		"productId": productID,
		"quantity":  quantity,
	}
	if err := r.api.do(ctx, fiber.MethodPost, "/cart/add", sess.Token, nil, body, nil); err != nil {
		return fmt.Errorf("add cart item: %w", err)
	}
	return nil
}

// UpdateQuantity sets the quantity of a cart line.
func (r *APICartRepository) UpdateQuantity(ctx context.Context, sess models.Session, cartItemID string, quantity int) error {
	body := map[string]interface{}{"quantity": quantity}
	path := "/cart/update/" + url.PathEscape(cartItemID)
	if err := r.api.do(ctx, fiber.MethodPut, path, sess.Token, nil, body, nil); err != nil {
		return fmt.Errorf("update cart item %s: %w", cartItemID, err)
	}
	return nil
}

// RemoveItem deletes a cart line.
func (r *APICartRepository) RemoveItem(ctx context.Context, sess models.Session, cartItemID string) error {
	path := fmt.Sprintf("/cart/%s/item/%s", url.PathEscape(sess.UserID), url.PathEscape(cartItemID))
	if err := r.api.do(ctx, fiber.MethodDelete, path, sess.Token, nil, nil, nil); err != nil {
		return fmt.Errorf("remove cart item %s: %w", cartItemID, err)
	}
	return nil
}

// Clear empties the cart server-side.
func (r *APICartRepository) Clear(ctx context.Context, sess models.Session) error {
	path := "/cart/clear/" + url.PathEscape(sess.UserID)
	if err := r.api.do(ctx, fiber.MethodDelete, path, sess.Token, nil, nil, nil); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
