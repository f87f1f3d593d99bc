package repositories

import (
	"context"
	"fmt"
	"net/url"

	"storefront/internal/models"
)

// APIProductRepository reads products from the catalog API.
type APIProductRepository struct {
	api *APIClient
}

// NewAPIProductRepository creates a new APIProductRepository.
func NewAPIProductRepository(api *APIClient) *APIProductRepository {
	return &APIProductRepository{api: api}
}

// GetByID returns a product by its ID.
func (r *APIProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.api.getJSON(ctx, "/products/"+url.PathEscape(id), "", nil, &product); err != nil {
		return nil, fmt.Errorf("product %s: %w", id, err)
	}
	return &product, nil
}
