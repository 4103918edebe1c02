package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/eadflow/academy_backend/database"
	"github.com/eadflow/academy_backend/services"
)

func TestVerifyCertificateNotFound(t *testing.T) {
	app := setupApp(t)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/v1/certificates/verify", "", map[string]string{"certificate_number": "00000000"}))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if body := decodeBody(t, resp); body["found"] != false {
		t.Fatalf("expected found:false, got %v", body)
	}
}

func TestVerifyCertificateFound(t *testing.T) {
	app := setupApp(t)
	user := seedUser(t, "student")
	course := seedCourse(t, 100)
	seedEnrollment(t, user.ID, course.ID, time.Now().Add(-30*24*time.Hour))
	seedAttempt(t, user.ID, course.ID, 1, 8.5)

	cert, err := services.IssueCertificate(database.DB, user.ID, course.ID)
	if err != nil {
		t.Fatalf("failed to issue certificate: %v", err)
	}

	// Public endpoint, no token; surrounding whitespace tolerated.
	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/v1/certificates/verify", "", map[string]string{"certificate_number": " " + cert.CertificateNumber + " "}))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)

	if body["found"] != true {
		t.Fatalf("expected found:true, got %v", body)
	}
	if body["certificate_number"] != cert.CertificateNumber {
		t.Fatalf("wrong certificate number: %v", body["certificate_number"])
	}
	if body["student_name"] != user.Name {
		t.Fatalf("wrong student name: %v", body["student_name"])
	}
	if body["cpf"] != "***.***.*89-01" {
		t.Fatalf("identity number not masked as expected: %v", body["cpf"])
	}
	if body["exam_score"].(float64) != 8.5 {
		t.Fatalf("wrong exam score: %v", body["exam_score"])
	}
	courseInfo, ok := body["course"].(map[string]interface{})
	if !ok || courseInfo["title"] != course.Title {
		t.Fatalf("wrong course info: %v", body["course"])
	}
	if body["enrolled_at"] == nil {
		t.Fatal("enrollment date missing")
	}
}

func TestVerifyCertificateOmitsFailedAttempts(t *testing.T) {
	app := setupApp(t)
	user := seedUser(t, "student")
	course := seedCourse(t, 100)
	seedEnrollment(t, user.ID, course.ID, time.Now().Add(-30*24*time.Hour))
	seedAttempt(t, user.ID, course.ID, 1, 4.0)
	seedAttempt(t, user.ID, course.ID, 2, 9.0)

	cert, err := services.IssueCertificate(database.DB, user.ID, course.ID)
	if err != nil {
		t.Fatalf("failed to issue certificate: %v", err)
	}

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/v1/certificates/verify", "", map[string]string{"certificate_number": cert.CertificateNumber}))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	body := decodeBody(t, resp)
	if body["exam_score"].(float64) != 9.0 {
		t.Fatalf("expected the passing score, got %v", body["exam_score"])
	}
}

func TestListMyCertificates(t *testing.T) {
	app := setupApp(t)
	user := seedUser(t, "student")
	other := seedUser(t, "student")
	course := seedCourse(t, 100)
	token := mintToken(t, user.ID, "student")

	if _, err := services.IssueCertificate(database.DB, user.ID, course.ID); err != nil {
		t.Fatalf("failed to issue certificate: %v", err)
	}
	if _, err := services.IssueCertificate(database.DB, other.ID, course.ID); err != nil {
		t.Fatalf("failed to issue certificate: %v", err)
	}

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/api/v1/certificates/mine", token, nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var certs []map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&certs); err != nil {
		t.Fatalf("failed to decode list: %v", err)
	}
	if len(certs) != 1 {
		t.Fatalf("expected only the caller's certificate, got %d", len(certs))
	}
}
