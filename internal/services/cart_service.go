package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"storefront/internal/models"
	"storefront/internal/notify"
	"storefront/internal/repositories"
	"storefront/pkg/metrics"

	"github.com/rs/zerolog"
)

// cartSession is the in-memory cart of one user: its store and the queue
// that serializes every write to it.
type cartSession struct {
	store *CartStore
	queue *serialQueue
}

// CartService keeps each user's CartStore in sync with the cart API. Every
// mutation is queued per user, sent to the server, and followed by a full
// re-fetch; the store only ever holds what the server returned.
type CartService struct {
	repo     repositories.CartRepository
	sink     notify.Sink
	metrics  *metrics.StorefrontMetrics
	logger   zerolog.Logger
	mu       sync.Mutex
	sessions map[string]*cartSession
}

// NewCartService creates a new CartService.
func NewCartService(repo repositories.CartRepository, sink notify.Sink, m *metrics.StorefrontMetrics, logger zerolog.Logger) *CartService {
	if sink == nil {
		sink = notify.Discard{}
	}
	return &CartService{
		repo:     repo,
		sink:     sink,
		metrics:  m,
		logger:   logger,
		sessions: make(map[string]*cartSession),
	}
}

// Current returns the last confirmed cart of the session user without any
// network call. Users never fetched get an empty cart.
func (s *CartService) Current(sess models.Session) models.Cart {
	s.mu.Lock()
	cs, ok := s.sessions[sess.UserID]
	s.mu.Unlock()
	if !ok {
		return models.NewCart(sess.UserID, nil)
	}
	return cs.store.Current()
}

// Load fetches the cart from the server and installs it.
func (s *CartService) Load(ctx context.Context, sess models.Session) (models.Cart, error) {
	const op = "load_cart"
	if !sess.Authenticated() {
		return models.Cart{}, s.fail(ctx, sess, op, newError(KindAuthenticationRequired, op, "please log in to view your cart"))
	}

	cs := s.session(sess.UserID)
	err := cs.queue.Submit(ctx, func(ctx context.Context) error {
		return s.resync(ctx, sess, cs, op)
	})
	if err != nil {
		return models.Cart{}, s.settle(ctx, sess, op, err)
	}
	s.metrics.IncCartOp(op, "ok")
	return cs.store.Current(), nil
}

// AddItem adds quantity units of productID to the cart.
func (s *CartService) AddItem(ctx context.Context, sess models.Session, productID string, quantity int) (models.Cart, error) {
	const op = "add_item"
	if !sess.Authenticated() {
		return models.Cart{}, s.fail(ctx, sess, op, newError(KindAuthenticationRequired, op, "please log in to add products to your cart"))
	}
	if quantity < 1 {
		return models.Cart{}, s.fail(ctx, sess, op, newError(KindValidation, op, "quantity must be at least 1, got %d", quantity))
	}
	if productID == "" {
		return models.Cart{}, s.fail(ctx, sess, op, newError(KindValidation, op, "product id is required"))
	}

	return s.mutate(ctx, sess, op, "Product added to cart!", func(ctx context.Context) error {
		return s.repo.AddItem(ctx, sess, productID, quantity)
	})
}

// UpdateQuantity sets the quantity of a cart line. Quantities below one are
// rejected; callers remove the line instead.
func (s *CartService) UpdateQuantity(ctx context.Context, sess models.Session, cartItemID string, quantity int) (models.Cart, error) {
	const op = "update_quantity"
	if !sess.Authenticated() {
		return models.Cart{}, s.fail(ctx, sess, op, newError(KindAuthenticationRequired, op, "please log in to update your cart"))
	}
	if quantity < 1 {
		return models.Cart{}, s.fail(ctx, sess, op, newError(KindValidation, op, "quantity must be at least 1, got %d; remove the item instead", quantity))
	}

	return s.mutate(ctx, sess, op, "Quantity updated!", func(ctx context.Context) error {
		return s.repo.UpdateQuantity(ctx, sess, cartItemID, quantity)
	})
}

// RemoveItem deletes a cart line.
func (s *CartService) RemoveItem(ctx context.Context, sess models.Session, cartItemID string) (models.Cart, error) {
	const op = "remove_item"
	if !sess.Authenticated() {
		return models.Cart{}, s.fail(ctx, sess, op, newError(KindAuthenticationRequired, op, "please log in to update your cart"))
	}

	return s.mutate(ctx, sess, op, "Item removed!", func(ctx context.Context) error {
		return s.repo.RemoveItem(ctx, sess, cartItemID)
	})
}

// ClearCart empties the cart server-side and, once confirmed, locally.
func (s *CartService) ClearCart(ctx context.Context, sess models.Session) (models.Cart, error) {
	const op = "clear_cart"
	if !sess.Authenticated() {
		return models.Cart{}, s.fail(ctx, sess, op, newError(KindAuthenticationRequired, op, "please log in to update your cart"))
	}

	cs := s.session(sess.UserID)
	err := cs.queue.Submit(ctx, func(ctx context.Context) error {
		if err := s.repo.Clear(ctx, sess); err != nil {
			return wrapError(KindNetworkOrServer, op, "could not clear the cart", err)
		}
		cs.store.Clear()
		return nil
	})
	if err != nil {
		return models.Cart{}, s.settle(ctx, sess, op, err)
	}
	s.succeed(ctx, sess, op, "Cart cleared!")
	return cs.store.Current(), nil
}

// Settled waits until every write queued before the call has finished and
// returns the resulting snapshot.
func (s *CartService) Settled(ctx context.Context, sess models.Session) (models.Cart, error) {
	cs := s.session(sess.UserID)
	if err := cs.queue.Submit(ctx, func(context.Context) error { return nil }); err != nil {
		return models.Cart{}, err
	}
	return cs.store.Current(), nil
}

// ResetAfterCheckout empties the local cart of userID once the server has
// confirmed an order, without another round trip.
func (s *CartService) ResetAfterCheckout(ctx context.Context, userID string) error {
	s.mu.Lock()
	cs, ok := s.sessions[userID]
	s.mu.Unlock()
	if !ok {
		return nil
	}
	return cs.queue.Submit(ctx, func(context.Context) error {
		cs.store.Clear()
		return nil
	})
}

// ClearAfterPayment empties the cart on the server and then locally, once a
// redirect payment has produced an order. The order API keeps the cart of a
// redirect payment, unlike a pay-on-delivery order. The local cart is
// cleared even when the server call fails.
func (s *CartService) ClearAfterPayment(ctx context.Context, sess models.Session) error {
	const op = "clear_after_payment"
	cs := s.session(sess.UserID)
	return cs.queue.Submit(ctx, func(ctx context.Context) error {
		defer cs.store.Clear()
		if err := s.repo.Clear(ctx, sess); err != nil {
			return wrapError(KindNetworkOrServer, op, "could not clear the cart", err)
		}
		return nil
	})
}

// Discard forgets the cart of userID, e.g. on logout.
func (s *CartService) Discard(userID string) {
	s.mu.Lock()
	cs, ok := s.sessions[userID]
	delete(s.sessions, userID)
	s.mu.Unlock()
	if ok {
		cs.queue.Close()
	}
}

func (s *CartService) session(userID string) *cartSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	cs, ok := s.sessions[userID]
	if !ok {
		cs = &cartSession{store: NewCartStore(userID), queue: newSerialQueue()}
		s.sessions[userID] = cs
	}
	return cs
}

// mutate runs call in the user's queue and re-fetches the cart after it.
func (s *CartService) mutate(ctx context.Context, sess models.Session, op, success string, call func(ctx context.Context) error) (models.Cart, error) {
	cs := s.session(sess.UserID)
	err := cs.queue.Submit(ctx, func(ctx context.Context) error {
		if err := call(ctx); err != nil {
			return wrapError(KindNetworkOrServer, op, "the server rejected the change", err)
		}
		return s.resync(ctx, sess, cs, op)
	})
	if err != nil {
		return models.Cart{}, s.settle(ctx, sess, op, err)
	}
	s.succeed(ctx, sess, op, success)
	return cs.store.Current(), nil
}

func (s *CartService) resync(ctx context.Context, sess models.Session, cs *cartSession, op string) error {
	cart, err := s.repo.GetByUser(ctx, sess)
	if err != nil {
		return wrapError(KindNetworkOrServer, op, "could not refresh the cart", err)
	}
	cs.store.Replace(cart)
	return nil
}

// settle reports a queued job's failure. A caller that stopped waiting gets
// its context error back and no notification.
func (s *CartService) settle(ctx context.Context, sess models.Session, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		s.logger.Debug().Str("op", op).Str("user_id", sess.UserID).Msg("caller left before cart operation finished")
		return err
	}
	if KindOf(err) == "" {
		err = wrapError(KindNetworkOrServer, op, "cart unavailable", err)
	}
	return s.fail(ctx, sess, op, err)
}

func (s *CartService) fail(ctx context.Context, sess models.Session, op string, err error) error {
	s.metrics.IncCartOp(op, string(KindOf(err)))
	s.logger.Warn().Err(err).Str("op", op).Str("user_id", sess.UserID).Msg("cart operation failed")
	s.sink.Notify(ctx, notify.Notification{
		UserID:  sess.UserID,
		Level:   notify.LevelError,
		Kind:    string(KindOf(err)),
		Message: userMessage(err),
		At:      time.Now(),
	})
	return err
}

func (s *CartService) succeed(ctx context.Context, sess models.Session, op, message string) {
	s.metrics.IncCartOp(op, "ok")
	s.sink.Notify(ctx, notify.Notification{
		UserID:  sess.UserID,
		Level:   notify.LevelSuccess,
		Message: message,
		At:      time.Now(),
	})
}

// userMessage is the text shown to the shopper for err.
func userMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) || e.Msg == "" {
		return "Something went wrong, please try again."
	}
	var apiErr *repositories.APIError
	if errors.As(err, &apiErr) {
		return e.Msg + ": " + apiErr.Message
	}
	return e.Msg
}
