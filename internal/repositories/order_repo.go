package repositories

import (
	"context"

	"storefront/internal/models"
)

// OrderRepository defines the order API used by checkout, payment
// reconciliation and order history.
type OrderRepository interface {
	CreateCOD(ctx context.Context, sess models.Session, payload models.CheckoutPayload) (models.OrderSummary, error)
	CreatePaymentSession(ctx context.Context, sess models.Session, payload models.CheckoutPayload) (string, error)
	ConfirmPayment(ctx context.Context, sess models.Session, confirmation models.PaymentConfirmation) (models.ConfirmationResult, error)
	GetByUser(ctx context.Context, sess models.Session) ([]models.Order, error)
	GetByUserAndStatus(ctx context.Context, sess models.Session, status models.OrderStatus) ([]models.Order, error)
	GetBySerial(ctx context.Context, sess models.Session, serialNumber string) (*models.Order, error)
	Cancel(ctx context.Context, sess models.Session, orderID string) error
}
