package models

import (
	"time"

	"github.com/google/uuid"
)

type Certificate struct {
	ID                uuid.UUID `gorm:"type:uuid;primary_key;default:(gen_random_uuid())" json:"id"`
	UserID            uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_certificates_user_course" json:"user_id"`
	CourseID          uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_certificates_user_course" json:"course_id"`
	CertificateNumber string    `gorm:"size:8;not null;unique" json:"certificate_number"`
	PdfURL            *string   `gorm:"type:text" json:"pdf_url"`
	GeneratedAt       time.Time `gorm:"not null" json:"generated_at"`

	User   User   `gorm:"foreignkey:UserID" json:"-"`
	Course Course `gorm:"foreignkey:CourseID" json:"course,omitempty"`
}
