package repositories

import (
	"context"
	"fmt"
	"sync"
	"time"

	"storefront/internal/models"

	"github.com/google/uuid"
)

// MockTicketRepository is an in-memory implementation of TicketRepository.
type MockTicketRepository struct {
	tickets map[uuid.UUID]models.PaymentTicket
	claims  map[string]string
	mu      sync.RWMutex
}

// NewMockTicketRepository creates a new instance of MockTicketRepository.
func NewMockTicketRepository() *MockTicketRepository {
	return &MockTicketRepository{
		tickets: make(map[uuid.UUID]models.PaymentTicket),
		claims:  make(map[string]string),
	}
}

// Create adds a ticket.
func (r *MockTicketRepository) Create(_ context.Context, ticket *models.PaymentTicket) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ticket.ID == uuid.Nil {
		ticket.ID = uuid.New()
	}
	now := time.Now()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	r.tickets[ticket.ID] = *ticket
	return nil
}

// FindOpenByUser returns the newest open, unexpired ticket of userID.
func (r *MockTicketRepository) FindOpenByUser(_ context.Context, userID string, now time.Time) (*models.PaymentTicket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var found *models.PaymentTicket
	for _, ticket := range r.tickets {
		if ticket.UserID != userID || ticket.Status != models.TicketOpen || ticket.Expired(now) {
			continue
		}
		if found == nil || ticket.CreatedAt.After(found.CreatedAt) {
			t := ticket
			found = &t
		}
	}
	if found == nil {
		return nil, fmt.Errorf("open ticket for user %s: %w", userID, ErrNotFound)
	}
	return found, nil
}

// ClaimPayment reserves paymentID unless it is already claimed.
func (r *MockTicketRepository) ClaimPayment(_ context.Context, paymentID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.claims[paymentID]; ok {
		return false, nil
	}
	r.claims[paymentID] = userID
	return true, nil
}

// ReleasePayment drops the claim of paymentID.
func (r *MockTicketRepository) ReleasePayment(_ context.Context, paymentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.claims, paymentID)
	return nil
}

// Consume marks a ticket as used by paymentID.
func (r *MockTicketRepository) Consume(_ context.Context, id uuid.UUID, paymentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ticket, ok := r.tickets[id]
	if !ok {
		return fmt.Errorf("ticket %s: %w", id, ErrNotFound)
	}
	ticket.Status = models.TicketConsumed
	ticket.PaymentID = paymentID
	ticket.UpdatedAt = time.Now()
	r.tickets[id] = ticket
	return nil
}

// CancelOpen cancels every open ticket of userID.
func (r *MockTicketRepository) CancelOpen(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, ticket := range r.tickets {
		if ticket.UserID == userID && ticket.Status == models.TicketOpen {
			ticket.Status = models.TicketCancelled
			ticket.UpdatedAt = time.Now()
			r.tickets[id] = ticket
			n++
		}
	}
	return n, nil
}
