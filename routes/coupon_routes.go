package routes

import (
	"github.com/eadflow/academy_backend/handlers"
	"github.com/eadflow/academy_backend/middleware"
	"github.com/gofiber/fiber/v2"
)

func CouponRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Post("/coupons/redeem", middleware.Protected(), handlers.RedeemCoupon)

	admin := api.Group("/admin/coupons", middleware.Protected(), middleware.AdminRequired())
	admin.Post("", handlers.CreateCoupon)
	admin.Get("", handlers.ListCoupons)
	admin.Delete("/:couponId", handlers.DeleteCoupon)
}
