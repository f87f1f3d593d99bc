package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/models"
	"storefront/internal/notify"
	"storefront/internal/repositories"

	"github.com/rs/zerolog"
)

// ErrOrderNotCancellable is wrapped by the ValidationError returned when a
// cancel is requested for an order that left WAITING.
var ErrOrderNotCancellable = errors.New("order can no longer be cancelled")

// filterAll selects every order regardless of status.
const filterAll = "ALL"

// OrderService handles the shopper's order history.
type OrderService struct {
	orders repositories.OrderRepository
	sink   notify.Sink
	logger zerolog.Logger
}

// NewOrderService creates a new OrderService.
func NewOrderService(orders repositories.OrderRepository, sink notify.Sink, logger zerolog.Logger) *OrderService {
	if sink == nil {
		sink = notify.Discard{}
	}
	return &OrderService{
		orders: orders,
		sink:   sink,
		logger: logger,
	}
}

// History lists the session user's orders. An empty status or "ALL" returns
// every order; anything else must be a known status.
func (s *OrderService) History(ctx context.Context, sess models.Session, status string) ([]models.Order, error) {
	const op = "order_history"
	if !sess.Authenticated() {
		return nil, s.fail(ctx, sess, newError(KindAuthenticationRequired, op, "please log in to see your orders"))
	}

	status = strings.TrimSpace(status)
	var (
		list []models.Order
		err  error
	)
	if status == "" || strings.EqualFold(status, filterAll) {
		list, err = s.orders.GetByUser(ctx, sess)
	} else {
		parsed, perr := models.ParseOrderStatus(status)
		if perr != nil {
			return nil, s.fail(ctx, sess, wrapError(KindValidation, op, "unknown order status", perr))
		}
		list, err = s.orders.GetByUserAndStatus(ctx, sess, parsed)
	}
	if err != nil {
		return nil, s.fail(ctx, sess, wrapError(KindNetworkOrServer, op, "could not load your orders", err))
	}
	if list == nil {
		list = []models.Order{}
	}
	return list, nil
}

// Details returns one order by its serial number.
func (s *OrderService) Details(ctx context.Context, sess models.Session, serialNumber string) (*models.Order, error) {
	const op = "order_details"
	if !sess.Authenticated() {
		return nil, s.fail(ctx, sess, newError(KindAuthenticationRequired, op, "please log in to see your orders"))
	}
	serialNumber = strings.TrimSpace(serialNumber)
	if serialNumber == "" {
		return nil, s.fail(ctx, sess, newError(KindValidation, op, "serial number is required"))
	}

	order, err := s.orders.GetBySerial(ctx, sess, serialNumber)
	if err != nil {
		return nil, s.fail(ctx, sess, wrapError(KindNetworkOrServer, op, "could not load the order", err))
	}
	return order, nil
}

// Cancel cancels a WAITING order of the session user. Orders in any other
// state are rejected without calling the server.
func (s *OrderService) Cancel(ctx context.Context, sess models.Session, orderID string) (*models.Order, error) {
	const op = "cancel_order"
	if !sess.Authenticated() {
		return nil, s.fail(ctx, sess, newError(KindAuthenticationRequired, op, "please log in to cancel an order"))
	}

	list, err := s.orders.GetByUser(ctx, sess)
	if err != nil {
		return nil, s.fail(ctx, sess, wrapError(KindNetworkOrServer, op, "could not load the order", err))
	}
	var order *models.Order
	for i := range list {
		if list[i].ID == orderID {
			order = &list[i]
			break
		}
	}
	if order == nil {
		return nil, s.fail(ctx, sess, newError(KindValidation, op, "order %s was not found", orderID))
	}
	if !order.Status.CanCancel() {
		return nil, s.fail(ctx, sess, &Error{
			Kind: KindValidation,
			Op:   op,
			Msg:  fmt.Sprintf("order %s is %s and can no longer be cancelled", orderID, order.Status),
			Err:  ErrOrderNotCancellable,
		})
	}

	if err := s.orders.Cancel(ctx, sess, orderID); err != nil {
		return nil, s.fail(ctx, sess, wrapError(KindNetworkOrServer, op, "could not cancel the order", err))
	}
	order.Status = models.OrderCancel

	s.logger.Info().Str("user_id", sess.UserID).Str("order_id", orderID).Msg("order cancelled")
	s.sink.Notify(ctx, notify.Notification{
		UserID:  sess.UserID,
		Level:   notify.LevelSuccess,
		Message: fmt.Sprintf("Order %s cancelled.", orderID),
		At:      time.Now(),
	})
	return order, nil
}

func (s *OrderService) fail(ctx context.Context, sess models.Session, err *Error) error {
	s.logger.Warn().Err(err).Str("op", err.Op).Str("user_id", sess.UserID).Msg("order operation failed")
	s.sink.Notify(ctx, notify.Notification{
		UserID:  sess.UserID,
		Level:   notify.LevelError,
		Kind:    string(err.Kind),
		Message: userMessage(err),
		At:      time.Now(),
	})
	return err
}
