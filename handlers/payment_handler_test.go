package handlers

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/eadflow/academy_backend/database"
	"github.com/eadflow/academy_backend/models"
	"github.com/eadflow/academy_backend/payments"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// stubSession swaps the Stripe session fetch for a canned response and
// restores the real client when the test ends.
func stubSession(t *testing.T, session *payments.CheckoutSession, err error) {
	t.Helper()

	original := retrieveCheckoutSession
	retrieveCheckoutSession = func(string) (*payments.CheckoutSession, error) {
		return session, err
	}
	t.Cleanup(func() { retrieveCheckoutSession = original })
}

func paidSession(userID uuid.UUID, courseIDs ...uuid.UUID) *payments.CheckoutSession {
	ids := ""
	for i, id := range courseIDs {
		if i > 0 {
			ids += ","
		}
		ids += id.String()
	}
	return &payments.CheckoutSession{
		ID:            "cs_test_" + uuid.NewString(),
		PaymentStatus: "paid",
		AmountTotal:   19900,
		Currency:      "brl",
		Metadata: map[string]string{
			"user_id":    userID.String(),
			"course_ids": ids,
		},
	}
}

func verifyPayment(t *testing.T, app *fiber.App, token, sessionID string) *http.Response {
	t.Helper()

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/v1/payments/verify", token, map[string]string{"session_id": sessionID}))
	if err != nil {
		t.Fatalf("verify request failed: %v", err)
	}
	return resp
}

func TestVerifyPaymentNotConfirmed(t *testing.T) {
	app := setupApp(t)
	user := seedUser(t, "student")
	token := mintToken(t, user.ID, "student")

	session := paidSession(user.ID, uuid.New())
	session.PaymentStatus = "unpaid"
	stubSession(t, session, nil)

	resp := verifyPayment(t, app, token, session.ID)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["error"] != "Payment not confirmed" {
		t.Fatalf("unexpected error: %v", body["error"])
	}
}

func TestVerifyPaymentProviderFailure(t *testing.T) {
	app := setupApp(t)
	user := seedUser(t, "student")
	token := mintToken(t, user.ID, "student")

	stubSession(t, nil, errors.New("stripe is down"))

	resp := verifyPayment(t, app, token, "cs_test_down")
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
}

func TestVerifyPaymentMissingMetadata(t *testing.T) {
	app := setupApp(t)
	user := seedUser(t, "student")
	token := mintToken(t, user.ID, "student")

	session := paidSession(user.ID, uuid.New())
	session.Metadata = map[string]string{}
	stubSession(t, session, nil)

	resp := verifyPayment(t, app, token, session.ID)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestVerifyPaymentWrongUser(t *testing.T) {
	app := setupApp(t)
	buyer := seedUser(t, "student")
	other := seedUser(t, "student")
	token := mintToken(t, other.ID, "student")

	session := paidSession(buyer.ID, uuid.New())
	stubSession(t, session, nil)

	resp := verifyPayment(t, app, token, session.ID)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestVerifyPaymentSettlesOnce(t *testing.T) {
	app := setupApp(t)
	user := seedUser(t, "student")
	token := mintToken(t, user.ID, "student")
	courseA := seedCourse(t, 99)
	courseB := seedCourse(t, 100)

	session := paidSession(user.ID, courseA.ID, courseB.ID)
	stubSession(t, session, nil)

	resp := verifyPayment(t, app, token, session.ID)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if body := decodeBody(t, resp); body["success"] != true {
		t.Fatalf("expected success, got %v", body)
	}

	var enrollments int64
	database.DB.Model(&models.Enrollment{}).Where("user_id = ?", user.ID).Count(&enrollments)
	if enrollments != 2 {
		t.Fatalf("expected 2 enrollments, got %d", enrollments)
	}
	var paymentRows int64
	database.DB.Model(&models.Payment{}).Where("stripe_session_id = ?", session.ID).Count(&paymentRows)
	if paymentRows != 2 {
		t.Fatalf("expected 2 payment rows, got %d", paymentRows)
	}

	var enrollment models.Enrollment
	if err := database.DB.Where("user_id = ? AND course_id = ?", user.ID, courseA.ID).First(&enrollment).Error; err != nil {
		t.Fatalf("enrollment missing: %v", err)
	}
	gap := enrollment.ExamAvailableAfter.Sub(enrollment.EnrolledAt)
	if gap != models.ExamWaitingPeriod {
		t.Fatalf("exam availability gap %v, want %v", gap, models.ExamWaitingPeriod)
	}

	// Second settlement of the same session must be a no-op.
	resp = verifyPayment(t, app, token, session.ID)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on replay, got %d", resp.StatusCode)
	}
	if body := decodeBody(t, resp); body["message"] != "Payment already processed" {
		t.Fatalf("expected replay acknowledgement, got %v", body)
	}

	database.DB.Model(&models.Enrollment{}).Where("user_id = ?", user.ID).Count(&enrollments)
	if enrollments != 2 {
		t.Fatalf("replay duplicated enrollments: %d", enrollments)
	}
	database.DB.Model(&models.Payment{}).Where("stripe_session_id = ?", session.ID).Count(&paymentRows)
	if paymentRows != 2 {
		t.Fatalf("replay duplicated payments: %d", paymentRows)
	}
}

func TestVerifyPaymentKeepsExistingEnrollment(t *testing.T) {
	app := setupApp(t)
	user := seedUser(t, "student")
	token := mintToken(t, user.ID, "student")
	course := seedCourse(t, 50)

	// Enrolled long ago through an earlier purchase; a new session
	// covering the same course must not reset the exam clock.
	existing := seedEnrollment(t, user.ID, course.ID, time.Now().Add(-30*24*time.Hour))

	session := paidSession(user.ID, course.ID)
	stubSession(t, session, nil)

	resp := verifyPayment(t, app, token, session.ID)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var enrollment models.Enrollment
	if err := database.DB.Where("user_id = ? AND course_id = ?", user.ID, course.ID).First(&enrollment).Error; err != nil {
		t.Fatalf("enrollment missing: %v", err)
	}
	if !enrollment.EnrolledAt.Equal(existing.EnrolledAt) {
		t.Fatalf("settlement rewrote the enrollment date: %v vs %v", enrollment.EnrolledAt, existing.EnrolledAt)
	}
}

func TestCreateCheckoutRejectsInactiveCourse(t *testing.T) {
	app := setupApp(t)
	user := seedUser(t, "student")
	token := mintToken(t, user.ID, "student")

	course := seedCourse(t, 100)
	database.DB.Model(&models.Course{}).Where("id = ?", course.ID).Update("active", false)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/v1/payments/checkout", token, map[string]interface{}{
		"course_ids": []string{course.ID.String()},
	}))
	if err != nil {
		t.Fatalf("checkout request failed: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}
