package handlers

import (
	"log"
	"strings"
	"time"

	"github.com/eadflow/academy_backend/database"
	"github.com/eadflow/academy_backend/middleware"
	"github.com/eadflow/academy_backend/models"
	"github.com/eadflow/academy_backend/services"
	"github.com/gofiber/fiber/v2"
)

type RedeemCouponRequest struct {
	Code string `json:"code" validate:"required"`
}

// RedeemCoupon validates a discount code and consumes one use. An
// invalid coupon is an expected outcome, so rejections come back as a
// normal valid:false payload rather than an error status.
func RedeemCoupon(c *fiber.Ctx) error {
	if _, err := middleware.CurrentUserID(c); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req RedeemCouponRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"valid": false, "message": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"valid": false, "message": "A coupon code is required"})
	}

	result, err := services.RedeemCoupon(database.DB, req.Code, time.Now())
	if err != nil {
		log.Printf("🔥 Coupon redemption failed for code %q: %v", req.Code, err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"valid": false, "message": "Failed to validate coupon"})
	}

	if !result.Valid {
		return c.JSON(fiber.Map{"valid": false, "message": result.Message})
	}

	return c.JSON(fiber.Map{"valid": true, "discount_percent": result.DiscountPercent})
}

type CouponRequest struct {
	Code            string     `json:"code" validate:"required,min=3,max=50"`
	DiscountPercent int        `json:"discount_percent" validate:"required,min=1,max=100"`
	ExpiresAt       *time.Time `json:"expires_at"`
	MaxUses         *int       `json:"max_uses" validate:"omitempty,gt=0"`
	Active          *bool      `json:"active"`
}

func CreateCoupon(c *fiber.Ctx) error {
	var req CouponRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	coupon := models.Coupon{
		Code:            strings.ToUpper(strings.TrimSpace(req.Code)),
		DiscountPercent: req.DiscountPercent,
		ExpiresAt:       req.ExpiresAt,
		MaxUses:         req.MaxUses,
		Active:          true,
	}
	if req.Active != nil {
		coupon.Active = *req.Active
	}

	if err := database.DB.Create(&coupon).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create coupon"})
	}
	return c.Status(fiber.StatusCreated).JSON(coupon)
}

func ListCoupons(c *fiber.Ctx) error {
	var coupons []models.Coupon
	database.DB.Order("created_at desc").Find(&coupons)
	return c.JSON(coupons)
}

func DeleteCoupon(c *fiber.Ctx) error {
	couponID := c.Params("couponId")
	result := database.DB.Delete(&models.Coupon{}, "id = ?", couponID)

	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete coupon"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Coupon not found"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
