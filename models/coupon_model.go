package models

import (
	"time"

	"github.com/google/uuid"
)

// Coupon codes are stored uppercase; lookups normalize before querying.
// TimesUsed is only ever mutated by the conditional increment in the
// coupon service, never by read-modify-write.
type Coupon struct {
	ID              uuid.UUID  `gorm:"type:uuid;primary_key;default:(gen_random_uuid())" json:"id"`
	Code            string     `gorm:"size:50;not null;unique" json:"code"`
	DiscountPercent int        `gorm:"not null" json:"discount_percent"`
	ExpiresAt       *time.Time `json:"expires_at"`
	MaxUses         *int       `json:"max_uses"`
	TimesUsed       int        `gorm:"not null;default:0" json:"times_used"`
	Active          bool       `gorm:"not null;default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
}
