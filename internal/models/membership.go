package models

import (
	"time"

	"github.com/google/uuid"
)

type Membership struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	ClassID       uuid.UUID `json:"class_id"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	PaymentStatus string    `json:"payment_status"`
	AmountPaid    *float64  `json:"amount_paid"`
	TransactionID *string   `json:"transaction_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Covers reports whether the membership window includes the given session date.
func (m *Membership) Covers(sessionDate time.Time) bool {
	return !sessionDate.Before(m.StartDate) && !sessionDate.After(m.EndDate)
}
