package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMTicketRepository is a GORM implementation of TicketRepository.
type GORMTicketRepository struct {
	db *gorm.DB
}

// NewGORMTicketRepository creates a new GORMTicketRepository.
func NewGORMTicketRepository(db *gorm.DB) *GORMTicketRepository {
	return &GORMTicketRepository{db: db}
}

// Migrate creates or updates the ticket and claim tables.
func (r *GORMTicketRepository) Migrate() error {
	if err := r.db.AutoMigrate(&models.PaymentTicket{}, &models.PaymentClaim{}); err != nil {
		return fmt.Errorf("failed to migrate payment tickets: %w", err)
	}
	return nil
}

// Create inserts a new ticket.
func (r *GORMTicketRepository) Create(ctx context.Context, ticket *models.PaymentTicket) error {
	if ticket.ID == uuid.Nil {
		ticket.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(ticket).Error; err != nil {
		return fmt.Errorf("failed to create payment ticket: %w", err)
	}
	return nil
}

// FindOpenByUser returns the newest open ticket of userID that has not expired.
func (r *GORMTicketRepository) FindOpenByUser(ctx context.Context, userID string, now time.Time) (*models.PaymentTicket, error) {
	var ticket models.PaymentTicket
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ? AND expires_at > ?", userID, models.TicketOpen, now).
		Order("created_at DESC").
		First(&ticket).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("open ticket for user %s: %w", userID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find open ticket: %w", err)
	}
	return &ticket, nil
}

// ClaimPayment inserts a claim row for paymentID. The primary key makes the
// insert the only winner among concurrent callers.
func (r *GORMTicketRepository) ClaimPayment(ctx context.Context, paymentID, userID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.PaymentClaim{PaymentID: paymentID, UserID: userID})
	if result.Error != nil {
		return false, fmt.Errorf("failed to claim payment %s: %w", paymentID, result.Error)
	}
	return result.RowsAffected == 1, nil
}

// ReleasePayment deletes the claim of paymentID.
func (r *GORMTicketRepository) ReleasePayment(ctx context.Context, paymentID string) error {
	err := r.db.WithContext(ctx).Where("payment_id = ?", paymentID).Delete(&models.PaymentClaim{}).Error
	if err != nil {
		return fmt.Errorf("failed to release payment %s: %w", paymentID, err)
	}
	return nil
}

// Consume marks a ticket as used by paymentID.
func (r *GORMTicketRepository) Consume(ctx context.Context, id uuid.UUID, paymentID string) error {
	result := r.db.WithContext(ctx).Model(&models.PaymentTicket{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": models.TicketConsumed, "payment_id": paymentID})
	if result.Error != nil {
		return fmt.Errorf("failed to consume ticket %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("ticket %s: %w", id, ErrNotFound)
	}
	return nil
}

// CancelOpen cancels every open ticket of userID and returns how many changed.
func (r *GORMTicketRepository) CancelOpen(ctx context.Context, userID string) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.PaymentTicket{}).
		Where("user_id = ? AND status = ?", userID, models.TicketOpen).
		Update("status", models.TicketCancelled)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to cancel tickets of user %s: %w", userID, result.Error)
	}
	return result.RowsAffected, nil
}
