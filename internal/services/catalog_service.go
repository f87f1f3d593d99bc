package services

import (
	"context"
	"strings"
	"sync"

	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// catalogFanOut bounds concurrent product lookups per cart.
const catalogFanOut = 4

// CatalogService reads product details for display.
type CatalogService struct {
	products repositories.ProductRepository
	logger   zerolog.Logger
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(products repositories.ProductRepository, logger zerolog.Logger) *CatalogService {
	return &CatalogService{products: products, logger: logger}
}

// Product returns one product.
func (s *CatalogService) Product(ctx context.Context, id string) (*models.Product, error) {
	const op = "product"
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, newError(KindValidation, op, "product id is required")
	}
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, wrapError(KindNetworkOrServer, op, "could not load the product", err)
	}
	return product, nil
}

// DecorateCart fills missing names and images of cart lines from the
// catalog. Lookup failures are logged and leave the line as it was.
func (s *CatalogService) DecorateCart(ctx context.Context, cart models.Cart) models.Cart {
	wanted := make(map[string]struct{})
	for _, item := range cart.Items {
		if item.ProductImage == "" || item.ProductName == "" {
			wanted[item.ProductID] = struct{}{}
		}
	}
	if len(wanted) == 0 {
		return cart
	}

	var (
		mu    sync.Mutex
		found = make(map[string]*models.Product, len(wanted))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(catalogFanOut)
	for id := range wanted {
		id := id
		g.Go(func() error {
			product, err := s.products.GetByID(gctx, id)
			if err != nil {
				s.logger.Debug().Err(err).Str("product_id", id).Msg("catalog lookup failed")
				return nil
			}
			mu.Lock()
			found[id] = product
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	out := cart.Clone()
	for i := range out.Items {
		product, ok := found[out.Items[i].ProductID]
		if !ok {
			continue
		}
		if out.Items[i].ProductName == "" {
			out.Items[i].ProductName = product.Name
		}
		if out.Items[i].ProductImage == "" {
			out.Items[i].ProductImage = product.Image
		}
	}
	return out
}
