package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/eadflow/academy_backend/database"
	"github.com/eadflow/academy_backend/middleware"
	"github.com/eadflow/academy_backend/models"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testJWTSecret = "handler-test-secret"

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "academy.db")), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.CourseVideo{},
		&models.CourseFile{},
		&models.ExamQuestion{},
		&models.Enrollment{},
		&models.ExamResult{},
		&models.Certificate{},
		&models.Coupon{},
		&models.Payment{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

// setupApp wires the routes under test onto a fresh fiber app backed by
// an isolated database. JWT_SECRET is set before Protected() reads it.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	t.Setenv("JWT_SECRET", testJWTSecret)
	database.DB = newTestDB(t)

	app := fiber.New()
	api := app.Group("/api/v1")

	admin := api.Group("/admin/exams", middleware.Protected(), middleware.AdminRequired())
	admin.Post("/:courseId/questions", CreateExamQuestion)
	admin.Get("/:courseId/questions", ListExamQuestions)

	exams := api.Group("/exams", middleware.Protected())
	exams.Get("/:courseId/status", GetExamStatus)
	exams.Get("/:courseId/paper", GetExamPaper)
	exams.Post("/:courseId/submit", SubmitExam)

	pay := api.Group("/payments", middleware.Protected())
	pay.Post("/checkout", CreateCheckout)
	pay.Post("/verify", VerifyPayment)

	api.Post("/coupons/redeem", middleware.Protected(), RedeemCoupon)

	api.Post("/certificates/verify", VerifyCertificate)
	api.Get("/certificates/mine", middleware.Protected(), ListMyCertificates)

	return app
}

func mintToken(t *testing.T, userID uuid.UUID, role string) string {
	t.Helper()

	claims := jwt.MapClaims{
		"user_id": userID.String(),
		"role":    role,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return signed
}

func jsonRequest(t *testing.T, method, target, token string, body interface{}) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()

	var out map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	return out
}

func seedUser(t *testing.T, role string) models.User {
	t.Helper()

	cpf := "12345678901"
	user := models.User{
		Name:     "Test Student",
		Email:    uuid.NewString() + "@example.com",
		Password: "hashed",
		Role:     role,
		CPF:      &cpf,
	}
	if err := database.DB.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}

func seedCourse(t *testing.T, price float64) models.Course {
	t.Helper()

	workload := "40 hours"
	course := models.Course{
		Title:    "Advanced Baking",
		Price:    price,
		Workload: &workload,
		Active:   true,
	}
	if err := database.DB.Create(&course).Error; err != nil {
		t.Fatalf("failed to seed course: %v", err)
	}
	return course
}

// seedEnrollment backdates the enrollment so the exam availability can
// be positioned relative to now.
func seedEnrollment(t *testing.T, userID, courseID uuid.UUID, enrolledAt time.Time) models.Enrollment {
	t.Helper()

	enrollment := models.NewEnrollment(userID, courseID, enrolledAt)
	if err := database.DB.Create(&enrollment).Error; err != nil {
		t.Fatalf("failed to seed enrollment: %v", err)
	}
	return enrollment
}

// seedQuestions creates count questions whose correct option is always 3.
func seedQuestions(t *testing.T, courseID uuid.UUID, count int) []models.ExamQuestion {
	t.Helper()

	questions := make([]models.ExamQuestion, count)
	for i := range questions {
		questions[i] = models.ExamQuestion{
			CourseID:      courseID,
			QuestionNum:   i + 1,
			Statement:     "Pick the third option.",
			Option1:       "one",
			Option2:       "two",
			Option3:       "three",
			Option4:       "four",
			Option5:       "five",
			CorrectOption: 3,
		}
		if err := database.DB.Create(&questions[i]).Error; err != nil {
			t.Fatalf("failed to seed question: %v", err)
		}
	}
	return questions
}

func seedAttempt(t *testing.T, userID, courseID uuid.UUID, attemptNumber int, score float64) {
	t.Helper()

	attempt := models.ExamResult{
		UserID:        userID,
		CourseID:      courseID,
		AttemptNumber: attemptNumber,
		Score:         score,
		Answers:       datatypes.JSON(`{}`),
		CompletedAt:   time.Now(),
	}
	if err := database.DB.Create(&attempt).Error; err != nil {
		t.Fatalf("failed to seed exam attempt: %v", err)
	}
}
