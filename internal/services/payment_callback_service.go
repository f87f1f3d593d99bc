package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"storefront/internal/models"
	"storefront/internal/notify"
	"storefront/internal/repositories"
	"storefront/pkg/metrics"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// orderIDMarker precedes the order identifier in the confirmation message.
const orderIDMarker = "Mã đơn hàng: "

// successMarker is part of every confirmation message of a captured payment.
const successMarker = "Thanh toán thành công"

// unknownOrderID is shown when the confirmation carries no identifier.
const unknownOrderID = "N/A"

// CallbackKind is the terminal state of a payment redirect.
type CallbackKind string

const (
	CallbackOrderCreated CallbackKind = "ORDER_CREATED"
	CallbackCancelled    CallbackKind = "CANCELLED"
	CallbackFailed       CallbackKind = "FAILED"
)

// CallbackOutcome is what the shopper sees after returning from the provider.
// NavigateTo is set when the caller must send the shopper elsewhere.
type CallbackOutcome struct {
	Kind       CallbackKind         `json:"kind"`
	Order      *models.OrderSummary `json:"order,omitempty"`
	Err        error                `json:"-"`
	NavigateTo string               `json:"navigateTo,omitempty"`
}

// CallbackRoutes are the application paths involved in a payment redirect.
type CallbackRoutes struct {
	SuccessPath string
	CancelPath  string
	CartPath    string
}

// PaymentCallbackService reconciles a provider redirect with the order API.
type PaymentCallbackService struct {
	carts   *CartService
	orders  repositories.OrderRepository
	tickets repositories.TicketRepository
	routes  CallbackRoutes
	sink    notify.Sink
	metrics *metrics.StorefrontMetrics
	logger  zerolog.Logger
	now     func() time.Time
}

// NewPaymentCallbackService creates a new PaymentCallbackService. tickets may
// be nil, which disables replay detection.
func NewPaymentCallbackService(carts *CartService, orders repositories.OrderRepository, tickets repositories.TicketRepository, routes CallbackRoutes, sink notify.Sink, m *metrics.StorefrontMetrics, logger zerolog.Logger) *PaymentCallbackService {
	if sink == nil {
		sink = notify.Discard{}
	}
	return &PaymentCallbackService{
		carts:   carts,
		orders:  orders,
		tickets: tickets,
		routes:  routes,
		sink:    sink,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// Reconcile interprets a request to path with query. It returns false when
// path is neither the success nor the cancel route.
func (s *PaymentCallbackService) Reconcile(ctx context.Context, sess models.Session, path string, query url.Values) (CallbackOutcome, bool) {
	switch cleanPath(path) {
	case cleanPath(s.routes.SuccessPath):
		return s.confirm(ctx, sess, confirmationFromQuery(query)), true
	case cleanPath(s.routes.CancelPath):
		return s.cancel(ctx, sess), true
	default:
		return CallbackOutcome{}, false
	}
}

func (s *PaymentCallbackService) confirm(ctx context.Context, sess models.Session, params models.PaymentConfirmation) CallbackOutcome {
	const op = "payment_callback"

	userID := params.UserID
	if userID == "" {
		userID = sess.UserID
	}

	if missing := missingParams(params); len(missing) > 0 {
		return s.fail(ctx, userID, newError(KindInvalidPaymentCallback, op, "invalid payment response, missing %s", strings.Join(missing, ", ")))
	}
	if sess.UserID != "" && sess.UserID != params.UserID {
		return s.fail(ctx, sess.UserID, newError(KindInvalidPaymentCallback, op, "this payment belongs to another account"))
	}

	claimed := false
	if s.tickets != nil {
		ok, err := s.tickets.ClaimPayment(ctx, params.PaymentID, params.UserID)
		switch {
		case err != nil:
			s.logger.Warn().Err(err).Str("payment_id", params.PaymentID).Msg("payment claim failed, confirming anyway")
		case !ok:
			return s.fail(ctx, userID, newError(KindInvalidPaymentCallback, op, "payment %s was already processed", params.PaymentID))
		default:
			claimed = true
		}
	}

	result, err := s.orders.ConfirmPayment(ctx, sess, params)
	if err != nil {
		s.release(ctx, claimed, params.PaymentID)
		return s.fail(ctx, userID, wrapError(KindPaymentConfirmationFailed, op, "payment confirmation failed", err))
	}
	if !confirmed(result) {
		s.release(ctx, claimed, params.PaymentID)
		reason := strings.TrimSpace(result.Message)
		if reason == "" {
			reason = "empty response"
		}
		return s.fail(ctx, userID, newError(KindPaymentConfirmationFailed, op, "payment was not confirmed: %s", reason))
	}

	summary := models.OrderSummary{OrderID: orderIDFrom(result), TotalPrice: decimal.Zero}
	owner := sess
	if owner.UserID != params.UserID {
		owner = models.Session{UserID: params.UserID}
	}
	if err := s.carts.ClearAfterPayment(ctx, owner); err != nil {
		if ctx.Err() != nil {
			s.logger.Debug().Err(err).Str("user_id", params.UserID).Msg("cart clear outlived request")
		} else {
			s.logger.Warn().Err(err).Str("user_id", params.UserID).Msg("failed to clear cart after payment")
		}
	}
	s.consumeTicket(ctx, params)

	s.metrics.IncCallback(string(CallbackOrderCreated))
	s.logger.Info().Str("user_id", params.UserID).Str("payment_id", params.PaymentID).Str("order_id", summary.OrderID).Msg("redirect payment confirmed")
	s.sink.Notify(ctx, notify.Notification{
		UserID:  params.UserID,
		Level:   notify.LevelSuccess,
		Message: fmt.Sprintf("Payment successful! Order ID: %s", summary.OrderID),
		At:      s.now(),
	})
	return CallbackOutcome{Kind: CallbackOrderCreated, Order: &summary}
}

func (s *PaymentCallbackService) cancel(ctx context.Context, sess models.Session) CallbackOutcome {
	if s.tickets != nil && sess.UserID != "" {
		if n, err := s.tickets.CancelOpen(ctx, sess.UserID); err != nil {
			s.logger.Warn().Err(err).Str("user_id", sess.UserID).Msg("failed to cancel payment tickets")
		} else if n > 0 {
			s.logger.Debug().Int64("tickets", n).Str("user_id", sess.UserID).Msg("payment tickets cancelled")
		}
	}

	s.metrics.IncCallback(string(CallbackCancelled))
	s.sink.Notify(ctx, notify.Notification{
		UserID:  sess.UserID,
		Level:   notify.LevelInfo,
		Message: "Payment was cancelled.",
		At:      s.now(),
	})
	return CallbackOutcome{Kind: CallbackCancelled, NavigateTo: s.routes.CartPath}
}

// consumeTicket marks the user's open ticket as used by the payment. The
// claim already guards against replays, so a missing ticket is only logged.
func (s *PaymentCallbackService) consumeTicket(ctx context.Context, params models.PaymentConfirmation) {
	if s.tickets == nil {
		return
	}
	ticket, err := s.tickets.FindOpenByUser(ctx, params.UserID, s.now())
	if errors.Is(err, repositories.ErrNotFound) {
		s.logger.Warn().Str("user_id", params.UserID).Str("payment_id", params.PaymentID).Msg("payment confirmed without an open ticket")
		return
	}
	if err == nil {
		err = s.tickets.Consume(ctx, ticket.ID, params.PaymentID)
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("payment_id", params.PaymentID).Msg("failed to record consumed payment ticket")
	}
}

// release frees a claim after a failed confirmation so the shopper can retry.
func (s *PaymentCallbackService) release(ctx context.Context, claimed bool, paymentID string) {
	if !claimed {
		return
	}
	if err := s.tickets.ReleasePayment(context.WithoutCancel(ctx), paymentID); err != nil {
		s.logger.Warn().Err(err).Str("payment_id", paymentID).Msg("failed to release payment claim")
	}
}

func (s *PaymentCallbackService) fail(ctx context.Context, userID string, err *Error) CallbackOutcome {
	s.metrics.IncCallback(string(err.Kind))
	s.logger.Warn().Err(err).Str("user_id", userID).Msg("payment callback rejected")
	s.sink.Notify(ctx, notify.Notification{
		UserID:  userID,
		Level:   notify.LevelError,
		Kind:    string(err.Kind),
		Message: userMessage(err),
		At:      s.now(),
	})
	return CallbackOutcome{Kind: CallbackFailed, Err: err, NavigateTo: s.routes.CartPath}
}

func confirmationFromQuery(query url.Values) models.PaymentConfirmation {
	return models.PaymentConfirmation{
		PaymentID:      strings.TrimSpace(query.Get("paymentId")),
		PayerID:        strings.TrimSpace(query.Get("PayerID")),
		UserID:         strings.TrimSpace(query.Get("userId")),
		ReceiveAddress: query.Get("receiveAddress"),
		ReceiveName:    query.Get("receiveName"),
		ReceivePhone:   query.Get("receivePhone"),
		Note:           query.Get("note"),
	}
}

// confirmed reports whether a confirmation answer describes a captured
// payment: it names the order or carries the success text.
func confirmed(result models.ConfirmationResult) bool {
	return strings.TrimSpace(result.OrderID) != "" || strings.Contains(result.Message, successMarker)
}

// orderIDFrom prefers an explicit orderId and otherwise reads the text after
// the marker in the confirmation message.
func orderIDFrom(result models.ConfirmationResult) string {
	if id := strings.TrimSpace(result.OrderID); id != "" {
		return id
	}
	if _, after, found := strings.Cut(result.Message, orderIDMarker); found {
		if fields := strings.Fields(after); len(fields) > 0 {
			return fields[0]
		}
	}
	return unknownOrderID
}

func cleanPath(p string) string {
	p = strings.TrimSpace(p)
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	return p
}

func missingParams(params models.PaymentConfirmation) []string {
	var missing []string
	for _, p := range []struct{ name, value string }{
		{"paymentId", params.PaymentID},
		{"PayerID", params.PayerID},
		{"userId", params.UserID},
	} {
		if p.value == "" {
			missing = append(missing, p.name)
		}
	}
	return missing
}
