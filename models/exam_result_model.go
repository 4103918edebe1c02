package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ExamResult is one graded attempt. Rows are never updated or deleted;
// the unique (user, course, attempt_number) index is what keeps two
// concurrent submissions from both landing as the same attempt.
type ExamResult struct {
	ID            uuid.UUID      `gorm:"type:uuid;primary_key;default:(gen_random_uuid())" json:"id"`
	UserID        uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_exam_results_attempt" json:"user_id"`
	CourseID      uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_exam_results_attempt" json:"course_id"`
	AttemptNumber int            `gorm:"not null;uniqueIndex:idx_exam_results_attempt" json:"attempt_number"`
	Score         float64        `gorm:"type:numeric(4,2);not null" json:"score"`
	Answers       datatypes.JSON `gorm:"type:jsonb" json:"answers"`
	CompletedAt   time.Time      `gorm:"not null" json:"completed_at"`

	User   User   `gorm:"foreignkey:UserID" json:"-"`
	Course Course `gorm:"foreignkey:CourseID" json:"-"`
}
