package services

import (
	"errors"
	"math"

	"github.com/eadflow/academy_backend/models"
)

const (
	// PassingScore is the minimum exam score, out of 10, required to
	// pass and earn a certificate.
	PassingScore = 7.0

	// MaxAttempts is the maximum number of graded submissions allowed
	// per student per course.
	MaxAttempts = 3
)

var ErrNoQuestions = errors.New("no exam questions registered for course")

type ScoreResult struct {
	Score   float64
	Correct int
	Total   int
}

// ScoreExam grades submitted answers against the authoritative answer
// key. Answers are keyed by question id and hold the selected option
// index; a missing, extraneous or out-of-range answer simply counts as
// incorrect. The returned score is kept at full precision so the
// passing comparison never loses to display rounding.
func ScoreExam(questions []models.ExamQuestion, answers map[string]int) (ScoreResult, error) {
	if len(questions) == 0 {
		return ScoreResult{}, ErrNoQuestions
	}

	correct := 0
	for _, q := range questions {
		if selected, ok := answers[q.ID.String()]; ok && selected == q.CorrectOption {
			correct++
		}
	}

	return ScoreResult{
		Score:   float64(correct) / float64(len(questions)) * 10,
		Correct: correct,
		Total:   len(questions),
	}, nil
}

// RoundScore rounds to one decimal for response payloads.
func RoundScore(score float64) float64 {
	return math.Round(score*10) / 10
}
