package models

import "github.com/shopspring/decimal"

// Product is the catalog view of a product, used to decorate cart lines.
type Product struct {
	ID          string          `json:"productId"`
	Name        string          `json:"productName"`
	Description string          `json:"description,omitempty"`
	Image       string          `json:"productImage,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
}
