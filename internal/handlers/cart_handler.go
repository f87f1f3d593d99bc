package handlers

import (
	"storefront/internal/middleware"
	"storefront/internal/notify"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// CartHandler handles HTTP requests for the shopper's cart.
type CartHandler struct {
	carts   *services.CartService
	catalog *services.CatalogService
	responder
}

// NewCartHandler creates a new CartHandler. catalog may be nil.
func NewCartHandler(carts *services.CartService, catalog *services.CatalogService, notices *notify.Recorder, loginPath string, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		carts:     carts,
		catalog:   catalog,
		responder: newResponder(notices, loginPath, logger),
	}
}

// RegisterRoutes registers the cart routes.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Delete("/", h.HandleClearCart)
	cartRoutes.Post("/items", h.HandleAddItem)
	cartRoutes.Patch("/items/:id", h.HandleUpdateQuantity)
	cartRoutes.Delete("/items/:id", h.HandleRemoveItem)
}

// AddItemRequest is the body of POST /cart/items. Quantity defaults to 1.
type AddItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  *int   `json:"quantity"`
}

// UpdateQuantityRequest is the body of PATCH /cart/items/:id.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// HandleGetCart fetches the cart from the server and returns it.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	sess := middleware.SessionFrom(c)
	cart, err := h.carts.Load(c.UserContext(), sess)
	if err != nil {
		return h.fail(c, sess, err)
	}
	if h.catalog != nil {
		cart = h.catalog.DecorateCart(c.UserContext(), cart)
	}
	return h.ok(c, sess, fiber.StatusOK, fiber.Map{"cart": cart})
}

// HandleAddItem adds a product to the cart.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	sess := middleware.SessionFrom(c)
	var req AddItemRequest
	if err := c.BodyParser(&req); err != nil {
		return h.badRequest(c, sess, "Invalid request body", err)
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	cart, err := h.carts.AddItem(c.UserContext(), sess, req.ProductID, quantity)
	if err != nil {
		return h.fail(c, sess, err)
	}
	return h.ok(c, sess, fiber.StatusOK, fiber.Map{"cart": cart})
}

// HandleUpdateQuantity sets the quantity of a cart line.
func (h *CartHandler) HandleUpdateQuantity(c *fiber.Ctx) error {
	sess := middleware.SessionFrom(c)
	var req UpdateQuantityRequest
	if err := c.BodyParser(&req); err != nil {
		return h.badRequest(c, sess, "Invalid request body", err)
	}

	cart, err := h.carts.UpdateQuantity(c.UserContext(), sess, c.Params("id"), req.Quantity)
	if err != nil {
		return h.fail(c, sess, err)
	}
	return h.ok(c, sess, fiber.StatusOK, fiber.Map{"cart": cart})
}

// HandleRemoveItem removes a cart line.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	sess := middleware.SessionFrom(c)
	cart, err := h.carts.RemoveItem(c.UserContext(), sess, c.Params("id"))
	if err != nil {
		return h.fail(c, sess, err)
	}
	return h.ok(c, sess, fiber.StatusOK, fiber.Map{"cart": cart})
}

// HandleClearCart empties the cart.
func (h *CartHandler) HandleClearCart(c *fiber.Ctx) error {
	sess := middleware.SessionFrom(c)
	cart, err := h.carts.ClearCart(c.UserContext(), sess)
	if err != nil {
		return h.fail(c, sess, err)
	}
	return h.ok(c, sess, fiber.StatusOK, fiber.Map{"cart": cart})
}
