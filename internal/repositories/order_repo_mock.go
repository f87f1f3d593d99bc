package repositories

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"storefront/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// orderIDMarker prefixes the order identifier in payment confirmation messages.
const orderIDMarker = "Mã đơn hàng: "

// MockOrderRepository is an in-memory stand-in for the order API. Placing an
// order empties the user's cart in carts, as the real server does.
type MockOrderRepository struct {
	carts       *MockCartRepository
	providerURL string
	orders      map[string]models.Order
	owners      map[string]string
	sessions    map[string]models.CheckoutPayload
	mu          sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
// providerURL is the base of the fake payment provider's approval page.
func NewMockOrderRepository(carts *MockCartRepository, providerURL string) *MockOrderRepository {
	return &MockOrderRepository{
		carts:       carts,
		providerURL: providerURL,
		orders:      make(map[string]models.Order),
		owners:      make(map[string]string),
		sessions:    make(map[string]models.CheckoutPayload),
	}
}

// CreateCOD places a pay-on-delivery order.
func (r *MockOrderRepository) CreateCOD(_ context.Context, sess models.Session, payload models.CheckoutPayload) (models.OrderSummary, error) {
	if len(payload.Items) == 0 {
		return models.OrderSummary{}, &APIError{Status: 400, Message: "cart is empty"}
	}
	order := r.place(sess.UserID, payload)
	return models.OrderSummary{OrderID: order.ID, TotalPrice: order.TotalPrice}, nil
}

// CreatePaymentSession remembers the payload and returns a provider URL.
func (r *MockOrderRepository) CreatePaymentSession(_ context.Context, _ models.Session, payload models.CheckoutPayload) (string, error) {
	if len(payload.Items) == 0 {
		return "", &APIError{Status: 400, Message: "cart is empty"}
	}
	paymentID := "PAYID-" + strings.ToUpper(uuid.New().String()[:8])

	r.mu.Lock()
	r.sessions[paymentID] = payload
	r.mu.Unlock()

	return fmt.Sprintf("%s?paymentId=%s", r.providerURL, paymentID), nil
}

// ConfirmPayment turns an approved payment session into an order.
func (r *MockOrderRepository) ConfirmPayment(_ context.Context, _ models.Session, c models.PaymentConfirmation) (models.ConfirmationResult, error) {
	r.mu.Lock()
	payload, ok := r.sessions[c.PaymentID]
	delete(r.sessions, c.PaymentID)
	r.mu.Unlock()
	if !ok || payload.UserID != c.UserID {
		return models.ConfirmationResult{}, &APIError{Status: 400, Message: "payment not found or already executed"}
	}

	payload.ReceiveName = c.ReceiveName
	payload.ReceiveAddress = c.ReceiveAddress
	payload.ReceivePhone = c.ReceivePhone
	payload.Note = c.Note
	order := r.place(c.UserID, payload)
	return models.ConfirmationResult{Message: "Thanh toán thành công! " + orderIDMarker + order.ID}, nil
}

// Approve plays the provider's approval page: it returns the parameters the
// provider echoes back on the success redirect for paymentID.
func (r *MockOrderRepository) Approve(paymentID, payerID string) (models.PaymentConfirmation, error) {
	r.mu.RLock()
	payload, ok := r.sessions[paymentID]
	r.mu.RUnlock()
	if !ok {
		return models.PaymentConfirmation{}, fmt.Errorf("payment %s: %w", paymentID, ErrNotFound)
	}
	return models.PaymentConfirmation{
		PaymentID:      paymentID,
		PayerID:        payerID,
		UserID:         payload.UserID,
		ReceiveAddress: payload.ReceiveAddress,
		ReceiveName:    payload.ReceiveName,
		ReceivePhone:   payload.ReceivePhone,
		Note:           payload.Note,
	}, nil
}

// GetByUser lists the user's orders, newest first.
func (r *MockOrderRepository) GetByUser(_ context.Context, sess models.Session) ([]models.Order, error) {
	return r.filter(sess.UserID, func(models.Order) bool { return true }), nil
}

// GetByUserAndStatus lists the user's orders in status.
func (r *MockOrderRepository) GetByUserAndStatus(_ context.Context, sess models.Session, status models.OrderStatus) ([]models.Order, error) {
	return r.filter(sess.UserID, func(o models.Order) bool { return o.Status == status }), nil
}

// GetBySerial returns an order of the session user by serial number.
func (r *MockOrderRepository) GetBySerial(_ context.Context, sess models.Session, serialNumber string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for id, order := range r.orders {
		if order.SerialNumber == serialNumber && r.owners[id] == sess.UserID {
			return &order, nil
		}
	}
	return nil, fmt.Errorf("order %s: %w", serialNumber, ErrNotFound)
}

// Cancel moves a WAITING order of the session user to CANCEL.
func (r *MockOrderRepository) Cancel(_ context.Context, sess models.Session, orderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[orderID]
	if !ok || r.owners[orderID] != sess.UserID {
		return fmt.Errorf("order %s: %w", orderID, ErrNotFound)
	}
	if !order.Status.CanTransitionTo(models.OrderCancel) {
		return &APIError{Status: 409, Message: fmt.Sprintf("order %s cannot be cancelled in status %s", orderID, order.Status)}
	}
	order.Status = models.OrderCancel
	r.orders[orderID] = order
	return nil
}

// UpdateStatus forces the status of an order; the admin side of the real API.
func (r *MockOrderRepository) UpdateStatus(orderID string, status models.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[orderID]
	if !ok {
		return fmt.Errorf("order %s: %w", orderID, ErrNotFound)
	}
	order.Status = status
	r.orders[orderID] = order
	return nil
}

func (r *MockOrderRepository) place(userID string, payload models.CheckoutPayload) models.Order {
	total := decimal.Zero
	items := make([]models.OrderItem, 0, len(payload.Items))
	for _, line := range payload.Items {
		total = total.Add(line.LineTotal())
		items = append(items, models.OrderItem{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
		})
	}

	id := uuid.New().String()
	order := models.Order{
		ID:             id,
		SerialNumber:   "SN-" + strings.ToUpper(id[:8]),
		Status:         models.OrderWaiting,
		TotalPrice:     total,
		Items:          items,
		ReceiveName:    payload.ReceiveName,
		ReceiveAddress: payload.ReceiveAddress,
		ReceivePhone:   payload.ReceivePhone,
		Note:           payload.Note,
		CreatedAt:      time.Now(),
	}

	r.mu.Lock()
	r.orders[id] = order
	r.owners[id] = userID
	r.mu.Unlock()

	if r.carts != nil {
		r.carts.clearUser(userID)
	}
	return order
}

func (r *MockOrderRepository) filter(userID string, keep func(models.Order) bool) []models.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]models.Order, 0)
	for id, order := range r.orders {
		if r.owners[id] == userID && keep(order) {
			list = append(list, order)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list
}
