package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	config "github.com/eadflow/academy_backend/configs"
	"github.com/eadflow/academy_backend/database"
	"github.com/eadflow/academy_backend/models"
	"github.com/eadflow/academy_backend/notifications"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const certificateNumberDigits = 8

// GenerateUniqueCertificateNumber draws random 8-digit numbers until
// one is free. Random rather than sequential so the public verifier
// cannot be enumerated.
func GenerateUniqueCertificateNumber(tx *gorm.DB) (string, error) {
	seededRand := rand.New(rand.NewSource(time.Now().UnixNano()))

	for {
		digits := make([]byte, certificateNumberDigits)
		digits[0] = byte('1' + seededRand.Intn(9))
		for i := 1; i < certificateNumberDigits; i++ {
			digits[i] = byte('0' + seededRand.Intn(10))
		}
		number := string(digits)

		var cert models.Certificate
		err := tx.Where("certificate_number = ?", number).First(&cert).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return number, nil
			}
			return "", err
		}
	}
}

// IssueCertificate records the certificate for a passing attempt. At
// most one certificate exists per (user, course): an existing row wins,
// and a duplicate-key failure from a racing request resolves to the row
// the winner inserted.
func IssueCertificate(db *gorm.DB, userID, courseID uuid.UUID) (*models.Certificate, error) {
	var cert models.Certificate

	err := db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND course_id = ?", userID, courseID).First(&cert).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		number, err := GenerateUniqueCertificateNumber(tx)
		if err != nil {
			return err
		}

		cert = models.Certificate{
			UserID:            userID,
			CourseID:          courseID,
			CertificateNumber: number,
			GeneratedAt:       time.Now(),
		}
		return tx.Create(&cert).Error
	})

	if err != nil {
		var existing models.Certificate
		if lookupErr := db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&existing).Error; lookupErr == nil {
			return &existing, nil
		}
		return nil, err
	}

	return &cert, nil
}

// MaskCPF redacts an identity number down to its last four digits,
// split two-and-two: ***.***.*XX-XX.
func MaskCPF(cpf string) string {
	if len(cpf) < 4 {
		return ""
	}
	return "***.***.*" + cpf[len(cpf)-4:len(cpf)-2] + "-" + cpf[len(cpf)-2:]
}

// GenerateCertificateAsset renders the certificate PDF, uploads it and
// stores the URL. Best-effort: the certificate record already exists,
// so a failure here only costs the downloadable artifact.
func GenerateCertificateAsset(certificateID uuid.UUID) {
	var cert models.Certificate
	if err := database.DB.Preload("User").Preload("Course").First(&cert, "id = ?", certificateID).Error; err != nil {
		log.Printf("🔥 Certificate %s not found for asset generation: %v", certificateID, err)
		return
	}

	htmlData, err := renderCertificateHTML(cert)
	if err != nil {
		log.Printf("🔥 Failed to render certificate HTML for %s: %v", cert.CertificateNumber, err)
		return
	}

	pdfBytes, err := generatePDFFromHTML(htmlData)
	if err != nil {
		log.Printf("🔥 Failed to generate certificate PDF for %s: %v", cert.CertificateNumber, err)
		return
	}

	uploadURL, err := uploadCertificatePDF(pdfBytes, cert.CertificateNumber)
	if err != nil {
		log.Printf("🔥 Failed to upload certificate %s: %v", cert.CertificateNumber, err)
		return
	}

	cert.PdfURL = &uploadURL
	if err := database.DB.Model(&models.Certificate{}).Where("id = ?", cert.ID).Update("pdf_url", uploadURL).Error; err != nil {
		log.Printf("🔥 Failed to save certificate URL for %s: %v", cert.CertificateNumber, err)
		return
	}

	log.Printf("✅ Certificate %s generated for %s.", cert.CertificateNumber, cert.User.Email)

	go notifications.SendEmail(
		cert.User.Name,
		cert.User.Email,
		"Your certificate is ready!",
		fmt.Sprintf("<h1>Congratulations!</h1><p>You passed the final exam of <b>%s</b>.</p><p>Your certificate number is <b>%s</b>. Download it here: <a href='%s'>certificate</a></p>", cert.Course.Title, cert.CertificateNumber, uploadURL),
	)
}

func renderCertificateHTML(cert models.Certificate) (string, error) {
	tmpl, err := template.ParseFiles("templates/certificate.html")
	if err != nil {
		return "", err
	}

	workload := ""
	if cert.Course.Workload != nil {
		workload = *cert.Course.Workload
	}

	data := struct {
		StudentName       string
		CourseTitle       string
		Workload          string
		CertificateNumber string
		IssueDate         string
	}{
		StudentName:       cert.User.Name,
		CourseTitle:       cert.Course.Title,
		Workload:          workload,
		CertificateNumber: cert.CertificateNumber,
		IssueDate:         cert.GeneratedAt.Format("January 2, 2006"),
	}

	var renderedHTML bytes.Buffer
	if err := tmpl.Execute(&renderedHTML, data); err != nil {
		return "", err
	}
	return renderedHTML.String(), nil
}

func generatePDFFromHTML(htmlContent string) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	var pdfBuffer []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			pdf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdfBuffer = pdf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuffer, nil
}

func uploadCertificatePDF(fileBytes []byte, certificateNumber string) (string, error) {
	cld, err := cloudinary.NewFromURL(config.Config("CLOUDINARY_URL"))
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	uploadParams := uploader.UploadParams{
		PublicID:     fmt.Sprintf("certificates/%s", strings.TrimSpace(certificateNumber)),
		Folder:       "academy_certificates",
		ResourceType: "raw",
	}

	uploadResult, err := cld.Upload.Upload(ctx, bytes.NewReader(fileBytes), uploadParams)
	if err != nil {
		return "", err
	}

	return uploadResult.SecureURL, nil
}
