package routes

import (
	"github.com/eadflow/academy_backend/handlers"
	"github.com/eadflow/academy_backend/middleware"
	"github.com/gofiber/fiber/v2"
)

func PaymentRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	pay := api.Group("/payments", middleware.Protected())
	pay.Post("/checkout", handlers.CreateCheckout)
	pay.Post("/verify", handlers.VerifyPayment)
}
