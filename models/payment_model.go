package models

import (
	"time"

	"github.com/google/uuid"
)

// Payment is one settled course purchase. A checkout session covering
// several courses settles into one row per course, all carrying the
// same session id; the composite unique index is the idempotency
// backstop for retried settlements.
type Payment struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key;default:(gen_random_uuid())" json:"id"`
	UserID          uuid.UUID `gorm:"type:uuid;not null" json:"user_id"`
	CourseID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_payments_session_course" json:"course_id"`
	StripeSessionID string    `gorm:"size:255;not null;uniqueIndex:idx_payments_session_course" json:"stripe_session_id"`
	Amount          float64   `gorm:"type:numeric(10,2);not null" json:"amount"`
	Status          string    `gorm:"size:20;not null;default:'paid'" json:"status"`

	User   User   `gorm:"foreignkey:UserID" json:"-"`
	Course Course `gorm:"foreignkey:CourseID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}
