package models

import (
	"time"

	"github.com/google/uuid"
)

// ExamWaitingPeriod is how long after enrollment the final exam stays
// locked. ExamAvailableAfter is fixed at enrollment creation.
const ExamWaitingPeriod = 20 * 24 * time.Hour

type Enrollment struct {
	ID                 uuid.UUID `gorm:"type:uuid;primary_key;default:(gen_random_uuid())" json:"id"`
	UserID             uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_enrollments_user_course" json:"user_id"`
	CourseID           uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_enrollments_user_course" json:"course_id"`
	EnrolledAt         time.Time `gorm:"not null" json:"enrolled_at"`
	ExamAvailableAfter time.Time `gorm:"not null" json:"exam_available_after"`

	User   User   `gorm:"foreignkey:UserID" json:"-"`
	Course Course `gorm:"foreignkey:CourseID" json:"-"`
}

// NewEnrollment stamps the enrollment instant and the derived exam
// availability instant together so the two never drift.
func NewEnrollment(userID, courseID uuid.UUID, now time.Time) Enrollment {
	return Enrollment{
		UserID:             userID,
		CourseID:           courseID,
		EnrolledAt:         now,
		ExamAvailableAfter: now.Add(ExamWaitingPeriod),
	}
}
