package handlers

import (
	"storefront/internal/middleware"
	"storefront/internal/notify"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// PaymentReturnHandler serves the addresses the payment provider redirects
// the shopper's browser to.
type PaymentReturnHandler struct {
	callbacks *services.PaymentCallbackService
	routes    services.CallbackRoutes
	responder
}

// NewPaymentReturnHandler creates a new PaymentReturnHandler.
func NewPaymentReturnHandler(callbacks *services.PaymentCallbackService, routes services.CallbackRoutes, notices *notify.Recorder, loginPath string, logger zerolog.Logger) *PaymentReturnHandler {
	return &PaymentReturnHandler{
		callbacks: callbacks,
		routes:    routes,
		responder: newResponder(notices, loginPath, logger),
	}
}

// RegisterRoutes registers the success and cancel return paths on the root
// router; they are fixed by the provider configuration, not the API prefix.
func (h *PaymentReturnHandler) RegisterRoutes(router fiber.Router) {
	router.Get(h.routes.SuccessPath, h.HandleReturn)
	router.Get(h.routes.CancelPath, h.HandleReturn)
}

// HandleReturn reconciles the redirect. A confirmed payment answers with the
// order; anything else sends the browser back to the cart, where the pending
// notification is delivered with the next cart response.
func (h *PaymentReturnHandler) HandleReturn(c *fiber.Ctx) error {
	sess := middleware.SessionFrom(c)
	outcome, handled := h.callbacks.Reconcile(c.UserContext(), sess, c.Path(), h.queryValues(c))
	if !handled {
		return c.Next()
	}

	if outcome.NavigateTo != "" {
		return c.Redirect(outcome.NavigateTo, fiber.StatusSeeOther)
	}
	return h.ok(c, sess, fiber.StatusOK, fiber.Map{
		"kind":  outcome.Kind,
		"order": outcome.Order,
	})
}
