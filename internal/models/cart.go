package models

import "github.com/shopspring/decimal"

// CartItem is a single line of a shopper's cart.
type CartItem struct {
	ID           string          `json:"cartItemId"`
	ProductID    string          `json:"productId"`
	ProductName  string          `json:"productName"`
	ProductImage string          `json:"productImage,omitempty"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	Quantity     int             `json:"orderQuantity"`
}

// LineTotal returns unit price times quantity.
func (i CartItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is a snapshot of a user's cart. Totals are derived from Items.
type Cart struct {
	UserID     string          `json:"userId"`
	Items      []CartItem      `json:"items"`
	TotalItems int             `json:"totalItems"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

// NewCart builds a cart for userID, dropping lines without a positive quantity
// and computing the totals.
func NewCart(userID string, items []CartItem) Cart {
	cart := Cart{UserID: userID, Items: make([]CartItem, 0, len(items)), TotalPrice: decimal.Zero}
	for _, item := range items {
		if item.Quantity < 1 {
			continue
		}
		cart.Items = append(cart.Items, item)
		cart.TotalItems += item.Quantity
		cart.TotalPrice = cart.TotalPrice.Add(item.LineTotal())
	}
	return cart
}

// IsEmpty reports whether the cart has no lines.
func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Clone returns a deep copy safe to hand out to readers.
func (c Cart) Clone() Cart {
	items := make([]CartItem, len(c.Items))
	copy(items, c.Items)
	c.Items = items
	return c
}
