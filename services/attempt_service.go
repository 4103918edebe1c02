package services

import (
	"errors"
	"time"

	"github.com/eadflow/academy_backend/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ExamState is the student's position in the enrollment → waiting
// period → exam → pass/fail lifecycle, computed from persisted facts.
type ExamState string

const (
	StateNotEnrolled ExamState = "not_enrolled"
	StateWaiting     ExamState = "waiting"
	StateAvailable   ExamState = "available"
	StatePassed      ExamState = "passed"
	StateExhausted   ExamState = "exhausted"
)

var (
	ErrNotEnrolled       = errors.New("not enrolled in course")
	ErrExamNotAvailable  = errors.New("exam not yet available")
	ErrAlreadyPassed     = errors.New("exam already passed")
	ErrAttemptsExhausted = errors.New("all exam attempts used")
)

type AttemptDecision struct {
	Allowed bool
	State   ExamState
	// PassingScore carries the score of the passing attempt when State
	// is StatePassed.
	PassingScore float64
}

// AttemptHistory returns the student's graded attempts for a course,
// oldest first. Callers holding a transaction pass it in so the read
// shares the submit transaction's snapshot.
func AttemptHistory(db *gorm.DB, userID, courseID uuid.UUID) ([]models.ExamResult, error) {
	var history []models.ExamResult
	err := db.Where("user_id = ? AND course_id = ?", userID, courseID).
		Order("attempt_number asc").
		Find(&history).Error
	return history, err
}

// ExamStateFor derives the exam state from the enrollment and attempt
// history. Pure given its inputs.
func ExamStateFor(enrollment *models.Enrollment, history []models.ExamResult, now time.Time) ExamState {
	if enrollment == nil {
		return StateNotEnrolled
	}
	for _, attempt := range history {
		if attempt.Score >= PassingScore {
			return StatePassed
		}
	}
	if len(history) >= MaxAttempts {
		return StateExhausted
	}
	if now.Before(enrollment.ExamAvailableAfter) {
		return StateWaiting
	}
	return StateAvailable
}

// CanAttempt is the single decision point for whether a new attempt may
// be recorded. The submit handler re-evaluates it inside the same
// transaction that inserts the attempt; the unique attempt-number index
// rejects the loser if two concurrent submissions both see "allowed".
func CanAttempt(enrollment *models.Enrollment, history []models.ExamResult, now time.Time) AttemptDecision {
	state := ExamStateFor(enrollment, history, now)
	decision := AttemptDecision{Allowed: state == StateAvailable, State: state}
	if state == StatePassed {
		for _, attempt := range history {
			if attempt.Score >= PassingScore {
				decision.PassingScore = attempt.Score
				break
			}
		}
	}
	return decision
}

// DecisionError maps a rejected decision onto its sentinel error.
func DecisionError(decision AttemptDecision) error {
	switch decision.State {
	case StateNotEnrolled:
		return ErrNotEnrolled
	case StateWaiting:
		return ErrExamNotAvailable
	case StatePassed:
		return ErrAlreadyPassed
	case StateExhausted:
		return ErrAttemptsExhausted
	}
	return nil
}
