package routes

import (
	"github.com/eadflow/academy_backend/handlers"
	"github.com/eadflow/academy_backend/middleware"
	"github.com/gofiber/fiber/v2"
)

func CertificateRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	// Public verifier, no auth: certificate numbers are the credential.
	api.Post("/certificates/verify", handlers.VerifyCertificate)

	api.Get("/certificates/mine", middleware.Protected(), handlers.ListMyCertificates)
}
