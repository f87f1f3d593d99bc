package repositories

import (
	"context"

	"storefront/internal/models"
)

// ProductRepository is the read-only catalog lookup used to decorate cart lines.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*models.Product, error)
}
