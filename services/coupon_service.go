package services

import (
	"strings"
	"time"

	"github.com/eadflow/academy_backend/models"
	"gorm.io/gorm"
)

type RedemptionResult struct {
	Valid           bool
	DiscountPercent int
	Message         string
}

// RedeemCoupon validates a code and consumes one use in the same
// statement. The validity guards live in the WHERE clause of a single
// conditional UPDATE, so two concurrent redemptions of a coupon with
// one use left can never both succeed: the database applies the
// increments serially and the second one matches zero rows.
func RedeemCoupon(db *gorm.DB, code string, now time.Time) (RedemptionResult, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return RedemptionResult{Valid: false, Message: "A coupon code is required"}, nil
	}

	res := db.Model(&models.Coupon{}).
		Where("code = ? AND active = ?", code, true).
		Where("expires_at IS NULL OR expires_at > ?", now).
		Where("max_uses IS NULL OR times_used < max_uses").
		UpdateColumn("times_used", gorm.Expr("times_used + 1"))
	if res.Error != nil {
		return RedemptionResult{}, res.Error
	}

	if res.RowsAffected == 0 {
		return RedemptionResult{Valid: false, Message: rejectionReason(db, code, now)}, nil
	}

	var coupon models.Coupon
	if err := db.Where("code = ?", code).First(&coupon).Error; err != nil {
		return RedemptionResult{}, err
	}
	return RedemptionResult{Valid: true, DiscountPercent: coupon.DiscountPercent}, nil
}

// rejectionReason re-reads the coupon purely to tell the student why
// the redemption failed. The answer is advisory; the UPDATE above is
// what decided.
func rejectionReason(db *gorm.DB, code string, now time.Time) string {
	var coupon models.Coupon
	if err := db.Where("code = ?", code).First(&coupon).Error; err != nil {
		return "Invalid coupon"
	}
	switch {
	case !coupon.Active:
		return "Invalid coupon"
	case coupon.ExpiresAt != nil && !coupon.ExpiresAt.After(now):
		return "Coupon expired"
	case coupon.MaxUses != nil && coupon.TimesUsed >= *coupon.MaxUses:
		return "Coupon usage limit reached"
	}
	return "Invalid coupon"
}

// LookupDiscount returns the discount percentage of a currently valid
// coupon without consuming a use. Checkout-session creation uses it to
// price a cart whose coupon was already redeemed from the cart flow.
func LookupDiscount(db *gorm.DB, code string, now time.Time) (int, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return 0, false
	}

	var coupon models.Coupon
	if err := db.Where("code = ? AND active = ?", code, true).First(&coupon).Error; err != nil {
		return 0, false
	}
	if coupon.ExpiresAt != nil && !coupon.ExpiresAt.After(now) {
		return 0, false
	}
	return coupon.DiscountPercent, true
}

// DeactivateExpiredCoupons flips active off for coupons past their
// expiry. Run from the cron job; redemption would reject them anyway,
// this just keeps the admin listing honest.
func DeactivateExpiredCoupons(db *gorm.DB, now time.Time) (int64, error) {
	res := db.Model(&models.Coupon{}).
		Where("active = ? AND expires_at IS NOT NULL AND expires_at <= ?", true, now).
		UpdateColumn("active", false)
	return res.RowsAffected, res.Error
}
