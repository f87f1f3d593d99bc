package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storefront/internal/models"
	"storefront/internal/notify"
	"storefront/internal/repositories"
	"storefront/pkg/metrics"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// CheckoutKind tells which terminal outcome a checkout produced.
type CheckoutKind string

const (
	// CheckoutOrderCreated means an order exists and the cart was emptied.
	CheckoutOrderCreated CheckoutKind = "ORDER_CREATED"
	// CheckoutPaymentPending means the caller must navigate to RedirectURL.
	CheckoutPaymentPending CheckoutKind = "PAYMENT_PENDING"
)

// CheckoutResult is the outcome of a successful checkout.
type CheckoutResult struct {
	Kind    CheckoutKind           `json:"kind"`
	Order   *models.OrderSummary   `json:"order,omitempty"`
	Payment *models.PendingPayment `json:"payment,omitempty"`
}

// CheckoutService turns the confirmed cart and a shipping form into either an
// order (pay-on-delivery) or a pending redirect payment.
type CheckoutService struct {
	carts     *CartService
	orders    repositories.OrderRepository
	tickets   repositories.TicketRepository
	ticketTTL time.Duration
	validate  *validator.Validate
	sink      notify.Sink
	metrics   *metrics.StorefrontMetrics
	logger    zerolog.Logger
	now       func() time.Time
}

// NewCheckoutService creates a new CheckoutService. tickets may be nil, in
// which case redirect payments are not recorded locally.
func NewCheckoutService(carts *CartService, orders repositories.OrderRepository, tickets repositories.TicketRepository, ticketTTL time.Duration, sink notify.Sink, m *metrics.StorefrontMetrics, logger zerolog.Logger) *CheckoutService {
	if sink == nil {
		sink = notify.Discard{}
	}
	return &CheckoutService{
		carts:     carts,
		orders:    orders,
		tickets:   tickets,
		ticketTTL: ticketTTL,
		validate:  NewValidator(),
		sink:      sink,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
}

// Checkout validates req against the session and the confirmed cart, then
// branches on the payment method. Nothing is sent to the server unless every
// local check passes.
func (s *CheckoutService) Checkout(ctx context.Context, sess models.Session, req models.CheckoutRequest) (CheckoutResult, error) {
	const op = "checkout"
	method := string(req.PaymentMethod)

	if !sess.Authenticated() {
		return CheckoutResult{}, s.fail(ctx, sess, method, newError(KindAuthenticationRequired, op, "please log in to check out"))
	}

	cart, err := s.carts.Settled(ctx, sess)
	if err != nil {
		if ctx.Err() != nil {
			return CheckoutResult{}, err
		}
		return CheckoutResult{}, s.fail(ctx, sess, method, wrapError(KindNetworkOrServer, op, "cart unavailable", err))
	}
	if cart.IsEmpty() {
		return CheckoutResult{}, s.fail(ctx, sess, method, newError(KindEmptyCart, op, "your cart is empty"))
	}

	req = normalizeCheckout(req)
	if err := s.validate.Struct(req); err != nil {
		return CheckoutResult{}, s.fail(ctx, sess, method, validationError(op, err))
	}

	payload := models.CheckoutPayload{
		UserID:         sess.UserID,
		ReceiveName:    req.ReceiveName,
		ReceiveAddress: req.ReceiveAddress,
		ReceivePhone:   req.ReceivePhone,
		Note:           req.Note,
		Items:          cart.Items,
	}

	switch req.PaymentMethod {
	case models.PaymentCOD:
		return s.payOnDelivery(ctx, sess, cart, payload)
	default:
		return s.startRedirectPayment(ctx, sess, payload)
	}
}

func (s *CheckoutService) payOnDelivery(ctx context.Context, sess models.Session, cart models.Cart, payload models.CheckoutPayload) (CheckoutResult, error) {
	const op = "checkout_cod"
	method := string(models.PaymentCOD)

	summary, err := s.orders.CreateCOD(ctx, sess, payload)
	if err != nil {
		return CheckoutResult{}, s.fail(ctx, sess, method, wrapError(KindCheckoutFailed, op, "could not place the cash-on-delivery order", err))
	}
	if summary.TotalPrice.IsZero() {
		summary.TotalPrice = cart.TotalPrice
	}

	if err := s.carts.ResetAfterCheckout(ctx, sess.UserID); err != nil {
		s.logger.Debug().Err(err).Str("user_id", sess.UserID).Msg("cart reset outlived request")
	}

	s.metrics.IncCheckout(method, "order_created")
	s.logger.Info().Str("user_id", sess.UserID).Str("order_id", summary.OrderID).Str("total", summary.TotalPrice.String()).Msg("cod order placed")
	s.sink.Notify(ctx, notify.Notification{
		UserID:  sess.UserID,
		Level:   notify.LevelSuccess,
		Message: fmt.Sprintf("Order placed! Order ID: %s", summary.OrderID),
		At:      s.now(),
	})
	return CheckoutResult{Kind: CheckoutOrderCreated, Order: &summary}, nil
}

// startRedirectPayment obtains the provider URL. The cart stays as it is
// until the provider redirect is reconciled.
func (s *CheckoutService) startRedirectPayment(ctx context.Context, sess models.Session, payload models.CheckoutPayload) (CheckoutResult, error) {
	const op = "checkout_redirect"
	method := string(models.PaymentRedirect)

	redirectURL, err := s.orders.CreatePaymentSession(ctx, sess, payload)
	if err != nil {
		return CheckoutResult{}, s.fail(ctx, sess, method, wrapError(KindCheckoutFailed, op, "could not start the online payment", err))
	}
	if strings.TrimSpace(redirectURL) == "" {
		return CheckoutResult{}, s.fail(ctx, sess, method, newError(KindCheckoutFailed, op, "the payment provider did not return a redirect address"))
	}

	pending := &models.PendingPayment{RedirectURL: redirectURL, UserID: sess.UserID}
	if s.tickets != nil {
		ticket := &models.PaymentTicket{
			UserID:    sess.UserID,
			Status:    models.TicketOpen,
			ExpiresAt: s.now().Add(s.ticketTTL),
		}
		if err := s.tickets.Create(ctx, ticket); err != nil {
			s.logger.Warn().Err(err).Str("user_id", sess.UserID).Msg("failed to record payment ticket")
		} else {
			pending.TicketID = ticket.ID.String()
		}
	}

	s.metrics.IncCheckout(method, "payment_pending")
	s.logger.Info().Str("user_id", sess.UserID).Str("ticket_id", pending.TicketID).Msg("redirect payment started")
	return CheckoutResult{Kind: CheckoutPaymentPending, Payment: pending}, nil
}

func (s *CheckoutService) fail(ctx context.Context, sess models.Session, method string, err error) error {
	s.metrics.IncCheckout(method, string(KindOf(err)))
	s.logger.Warn().Err(err).Str("user_id", sess.UserID).Str("method", method).Msg("checkout failed")
	s.sink.Notify(ctx, notify.Notification{
		UserID:  sess.UserID,
		Level:   notify.LevelError,
		Kind:    string(KindOf(err)),
		Message: userMessage(err),
		At:      s.now(),
	})
	return err
}

func normalizeCheckout(req models.CheckoutRequest) models.CheckoutRequest {
	req.ReceiveName = strings.TrimSpace(req.ReceiveName)
	req.ReceiveAddress = strings.TrimSpace(req.ReceiveAddress)
	req.ReceivePhone = strings.TrimSpace(req.ReceivePhone)
	req.Note = strings.TrimSpace(req.Note)
	if req.Note == "" {
		req.Note = models.DefaultNote
	}
	req.PaymentMethod = models.PaymentMethod(strings.ToUpper(strings.TrimSpace(string(req.PaymentMethod))))
	return req
}
