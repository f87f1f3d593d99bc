package repositories

import (
	"context"
	"time"

	"storefront/internal/models"

	"github.com/google/uuid"
)

// TicketRepository persists redirect-payment tickets.
type TicketRepository interface {
	Create(ctx context.Context, ticket *models.PaymentTicket) error
	// FindOpenByUser returns the newest open, unexpired ticket of userID, or
	// ErrNotFound.
	FindOpenByUser(ctx context.Context, userID string, now time.Time) (*models.PaymentTicket, error)
	// ClaimPayment reserves paymentID for the caller. It reports false when
	// the payment was already claimed.
	ClaimPayment(ctx context.Context, paymentID, userID string) (bool, error)
	ReleasePayment(ctx context.Context, paymentID string) error
	Consume(ctx context.Context, id uuid.UUID, paymentID string) error
	CancelOpen(ctx context.Context, userID string) (int64, error)
}
