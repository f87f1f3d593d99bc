package models

import (
	"time"

	"github.com/google/uuid"
)

// TicketStatus is the state of a redirect-payment ticket.
type TicketStatus string

const (
	TicketOpen      TicketStatus = "OPEN"
	TicketConsumed  TicketStatus = "CONSUMED"
	TicketCancelled TicketStatus = "CANCELLED"
)

// PaymentTicket records a redirect payment started by a user so that a
// returning redirect can be matched and replays detected.
type PaymentTicket struct {
	ID        uuid.UUID    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string       `json:"userId" gorm:"index;type:varchar(64)"`
	Status    TicketStatus `json:"status" gorm:"index;type:varchar(16)"`
	PaymentID string       `json:"paymentId,omitempty" gorm:"index;type:varchar(128)"`
	ExpiresAt time.Time    `json:"expiresAt"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// Expired reports whether the ticket is past its deadline at now.
func (t PaymentTicket) Expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && now.After(t.ExpiresAt)
}

// PaymentClaim reserves a provider payment id for the single request allowed
// to confirm it.
type PaymentClaim struct {
	PaymentID string    `json:"paymentId" gorm:"primaryKey;type:varchar(128)"`
	UserID    string    `json:"userId" gorm:"index;type:varchar(64)"`
	CreatedAt time.Time `json:"createdAt"`
}
