package handlers

import (
	"storefront/internal/middleware"
	"storefront/internal/notify"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// OrderHandler handles HTTP requests for the shopper's orders.
type OrderHandler struct {
	service *services.OrderService
	responder
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService, notices *notify.Recorder, loginPath string, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service:   service,
		responder: newResponder(notices, loginPath, logger),
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Get("/serial/:serial", h.HandleGetOrderBySerial)
	orderRoutes.Post("/:id/cancel", h.HandleCancelOrder)
}

// HandleGetOrders lists the shopper's orders, optionally filtered by ?status=.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	sess := middleware.SessionFrom(c)
	orders, err := h.service.History(c.UserContext(), sess, c.Query("status"))
	if err != nil {
		return h.fail(c, sess, err)
	}
	return h.ok(c, sess, fiber.StatusOK, fiber.Map{
		"content":       orders,
		"totalElements": len(orders),
	})
}

// HandleGetOrderBySerial retrieves a single order by its serial number.
func (h *OrderHandler) HandleGetOrderBySerial(c *fiber.Ctx) error {
	sess := middleware.SessionFrom(c)
	order, err := h.service.Details(c.UserContext(), sess, c.Params("serial"))
	if err != nil {
		return h.fail(c, sess, err)
	}
	return h.ok(c, sess, fiber.StatusOK, fiber.Map{"order": order})
}

// HandleCancelOrder cancels a WAITING order.
func (h *OrderHandler) HandleCancelOrder(c *fiber.Ctx) error {
	sess := middleware.SessionFrom(c)
	order, err := h.service.Cancel(c.UserContext(), sess, c.Params("id"))
	if err != nil {
		return h.fail(c, sess, err)
	}
	return h.ok(c, sess, fiber.StatusOK, fiber.Map{"order": order})
}
