package handlers

import (
	"fmt"
	"log"
	"strings"
	"time"

	config "github.com/eadflow/academy_backend/configs"
	"github.com/eadflow/academy_backend/database"
	"github.com/eadflow/academy_backend/middleware"
	"github.com/eadflow/academy_backend/models"
	"github.com/eadflow/academy_backend/notifications"
	"github.com/eadflow/academy_backend/payments"
	"github.com/eadflow/academy_backend/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Swapped out in tests.
var retrieveCheckoutSession = payments.RetrieveCheckoutSession

type CheckoutRequest struct {
	CourseIDs  []string `json:"course_ids" validate:"required,min=1,dive,uuid4"`
	CouponCode *string  `json:"coupon_code,omitempty"`
}

// CreateCheckout opens a payment session for the caller's cart. Prices
// come from the course table and the discount from the coupon table;
// nothing money-related is taken from the request.
func CreateCheckout(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var courses []models.Course
	if err := database.DB.Where("id IN ? AND active = ?", req.CourseIDs, true).Find(&courses).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load courses"})
	}
	if len(courses) != len(req.CourseIDs) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "One or more courses are invalid or inactive"})
	}

	total := 0.0
	titles := make([]string, len(courses))
	courseIDs := make([]string, len(courses))
	for i, course := range courses {
		total += course.Price
		titles[i] = course.Title
		courseIDs[i] = course.ID.String()
	}

	if req.CouponCode != nil {
		if percent, ok := services.LookupDiscount(database.DB, *req.CouponCode, time.Now()); ok {
			total = total * (100 - float64(percent)) / 100
		}
	}

	frontendURL := config.Config("FRONTEND_URL")
	session, err := payments.CreateCheckoutSession(
		int64(total*100+0.5),
		"brl",
		strings.Join(titles, ", "),
		userID.String(),
		courseIDs,
		fmt.Sprintf("%s/payment-success?session_id={CHECKOUT_SESSION_ID}", frontendURL),
		fmt.Sprintf("%s/cart", frontendURL),
	)
	if err != nil {
		log.Printf("🔥 Stripe CreateCheckoutSession failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create checkout session"})
	}

	return c.JSON(fiber.Map{"session_id": session.ID, "url": session.URL})
}

type VerifyPaymentRequest struct {
	SessionID string `json:"session_id" validate:"required"`
}

// VerifyPayment settles a checkout session: confirms payment with the
// provider, then materializes enrollments and payment rows. Safe to
// call any number of times for the same session.
func VerifyPayment(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req VerifyPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	session, err := retrieveCheckoutSession(req.SessionID)
	if err != nil {
		log.Printf("🔥 Failed to retrieve checkout session %s: %v", req.SessionID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to verify payment. Please try again."})
	}

	if session.PaymentStatus != "paid" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Payment not confirmed"})
	}

	// Only the metadata the server wrote at checkout creation is
	// trusted; the request body carries nothing but the session id.
	metaUserID := session.Metadata["user_id"]
	courseIDs := strings.Split(session.Metadata["course_ids"], ",")
	if metaUserID == "" || len(courseIDs) == 0 || courseIDs[0] == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session metadata"})
	}

	if metaUserID != userID.String() {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Not authorized for this payment"})
	}

	var existing int64
	if err := database.DB.Model(&models.Payment{}).Where("stripe_session_id = ?", session.ID).Count(&existing).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to verify payment. Please try again."})
	}
	if existing > 0 {
		return c.JSON(fiber.Map{"success": true, "message": "Payment already processed"})
	}

	amount := float64(session.AmountTotal) / 100

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		for _, rawID := range courseIDs {
			courseID, err := uuid.Parse(strings.TrimSpace(rawID))
			if err != nil {
				return fmt.Errorf("invalid course id in session metadata: %q", rawID)
			}

			enrollment := models.NewEnrollment(userID, courseID, now)
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
				DoNothing: true,
			}).Create(&enrollment).Error; err != nil {
				return err
			}

			payment := models.Payment{
				UserID:          userID,
				CourseID:        courseID,
				StripeSessionID: session.ID,
				Amount:          amount,
				Status:          "paid",
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "stripe_session_id"}, {Name: "course_id"}},
				DoNothing: true,
			}).Create(&payment).Error; err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		log.Printf("🔥 Failed to settle payment session %s: %v", session.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to verify payment. Please try again."})
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err == nil {
		go notifications.SendEmail(user.Name, user.Email, "Purchase confirmed!", "<h1>Purchase confirmed</h1><p>Your enrollment is active. The final exam unlocks 20 days after enrollment.</p>")
	}

	return c.JSON(fiber.Map{"success": true})
}
