package handlers

import (
	"strings"
	"time"

	"github.com/eadflow/academy_backend/database"
	"github.com/eadflow/academy_backend/middleware"
	"github.com/eadflow/academy_backend/models"
	"github.com/eadflow/academy_backend/services"
	"github.com/gofiber/fiber/v2"
)

type VerifyCertificateRequest struct {
	CertificateNumber string `json:"certificate_number" validate:"required"`
}

// VerifyCertificate is the public lookup: anyone holding a certificate
// number can confirm it. The response is redacted; it never carries the
// holder's contact data, raw identity number, or failed attempts.
func VerifyCertificate(c *fiber.Ctx) error {
	var req VerifyCertificateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Certificate number is required"})
	}

	var cert models.Certificate
	err := database.DB.Preload("User").Preload("Course").
		Where("certificate_number = ?", strings.TrimSpace(req.CertificateNumber)).
		First(&cert).Error
	if err != nil {
		return c.JSON(fiber.Map{"found": false})
	}

	var enrolledAt *time.Time
	var enrollment models.Enrollment
	if err := database.DB.Where("user_id = ? AND course_id = ?", cert.UserID, cert.CourseID).First(&enrollment).Error; err == nil {
		enrolledAt = &enrollment.EnrolledAt
	}

	// Only the qualifying attempt is disclosed, never the full history.
	var examScore interface{}
	var examDate interface{}
	var passing models.ExamResult
	err = database.DB.Where("user_id = ? AND course_id = ? AND score >= ?", cert.UserID, cert.CourseID, services.PassingScore).
		Order("completed_at desc").
		First(&passing).Error
	if err == nil {
		examScore = services.RoundScore(passing.Score)
		examDate = passing.CompletedAt
	}

	var maskedCPF interface{}
	if cert.User.CPF != nil {
		if masked := services.MaskCPF(*cert.User.CPF); masked != "" {
			maskedCPF = masked
		}
	}

	return c.JSON(fiber.Map{
		"found":              true,
		"certificate_number": cert.CertificateNumber,
		"generated_at":       cert.GeneratedAt,
		"course": fiber.Map{
			"title":    cert.Course.Title,
			"workload": cert.Course.Workload,
		},
		"student_name": cert.User.Name,
		"cpf":          maskedCPF,
		"enrolled_at":  enrolledAt,
		"exam_score":   examScore,
		"exam_date":    examDate,
		"pdf_url":      cert.PdfURL,
	})
}

// ListMyCertificates returns the caller's certificates with course info.
func ListMyCertificates(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var certs []models.Certificate
	if err := database.DB.Preload("Course").Where("user_id = ?", userID).Order("generated_at desc").Find(&certs).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load certificates"})
	}
	return c.JSON(certs)
}
