package jobs

import (
	"log"
	"time"

	"github.com/eadflow/academy_backend/database"
	"github.com/eadflow/academy_backend/services"
)

// DeactivateExpiredCoupons retires coupons past their expiry so admin
// listings and the cart stop offering them. Redemption already rejects
// expired codes regardless of when this last ran.
func DeactivateExpiredCoupons() {
	count, err := services.DeactivateExpiredCoupons(database.DB, time.Now())
	if err != nil {
		log.Printf("🔥 Failed to deactivate expired coupons: %v", err)
		return
	}
	if count > 0 {
		log.Printf("✅ Deactivated %d expired coupon(s).", count)
	}
}
