package handlers

import (
	"storefront/internal/middleware"
	"storefront/internal/notify"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// ProductHandler exposes the catalog lookup used by the product page.
type ProductHandler struct {
	catalog *services.CatalogService
	responder
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(catalog *services.CatalogService, notices *notify.Recorder, loginPath string, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		catalog:   catalog,
		responder: newResponder(notices, loginPath, logger),
	}
}

// RegisterRoutes registers the product routes.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/products/:id", h.HandleGetProduct)
}

// HandleGetProduct retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	sess := middleware.SessionFrom(c)
	product, err := h.catalog.Product(c.UserContext(), c.Params("id"))
	if err != nil {
		if isNotFound(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Product not found",
			})
		}
		return h.fail(c, sess, err)
	}
	return h.ok(c, sess, fiber.StatusOK, fiber.Map{"product": product})
}
