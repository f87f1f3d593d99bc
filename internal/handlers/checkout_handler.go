package handlers

import (
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/notify"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// CheckoutHandler handles checkout submissions.
type CheckoutHandler struct {
	checkout *services.CheckoutService
	responder
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(checkout *services.CheckoutService, notices *notify.Recorder, loginPath string, logger zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkout:  checkout,
		responder: newResponder(notices, loginPath, logger),
	}
}

// RegisterRoutes registers the checkout route.
func (h *CheckoutHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/checkout", h.HandleCheckout)
}

// HandleCheckout places a pay-on-delivery order (201) or returns the payment
// provider's redirect address (200).
func (h *CheckoutHandler) HandleCheckout(c *fiber.Ctx) error {
	sess := middleware.SessionFrom(c)
	var req models.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return h.badRequest(c, sess, "Invalid request body", err)
	}

	result, err := h.checkout.Checkout(c.UserContext(), sess, req)
	if err != nil {
		return h.fail(c, sess, err)
	}

	if result.Kind == services.CheckoutPaymentPending {
		return h.ok(c, sess, fiber.StatusOK, fiber.Map{
			"kind":        result.Kind,
			"redirectUrl": result.Payment.RedirectURL,
			"payment":     result.Payment,
		})
	}
	return h.ok(c, sess, fiber.StatusCreated, fiber.Map{
		"kind":  result.Kind,
		"order": result.Order,
	})
}
