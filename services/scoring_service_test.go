package services

import (
	"errors"
	"testing"

	"github.com/eadflow/academy_backend/models"
	"github.com/google/uuid"
)

func makeQuestions(n int) []models.ExamQuestion {
	questions := make([]models.ExamQuestion, n)
	for i := range questions {
		questions[i] = models.ExamQuestion{
			ID:            uuid.New(),
			QuestionNum:   i + 1,
			CorrectOption: i%5 + 1,
		}
	}
	return questions
}

// TestScoreExamCountsMatches grades a 10-question exam with 8 correct
// answers and expects score 8.0.
func TestScoreExamCountsMatches(t *testing.T) {
	questions := makeQuestions(10)

	answers := make(map[string]int)
	for i, q := range questions {
		if i < 8 {
			answers[q.ID.String()] = q.CorrectOption
		} else {
			answers[q.ID.String()] = q.CorrectOption%5 + 1
		}
	}

	result, err := ScoreExam(questions, answers)
	if err != nil {
		t.Fatalf("ScoreExam returned error: %v", err)
	}
	if result.Correct != 8 {
		t.Fatalf("expected 8 correct, got %d", result.Correct)
	}
	if result.Total != 10 {
		t.Fatalf("expected total 10, got %d", result.Total)
	}
	if result.Score != 8.0 {
		t.Fatalf("expected score 8.0, got %v", result.Score)
	}
}

// TestScoreExamMissingAnswersAreIncorrect ensures unanswered questions
// count as wrong instead of failing the grade.
func TestScoreExamMissingAnswersAreIncorrect(t *testing.T) {
	questions := makeQuestions(4)

	answers := map[string]int{
		questions[0].ID.String(): questions[0].CorrectOption,
	}

	result, err := ScoreExam(questions, answers)
	if err != nil {
		t.Fatalf("ScoreExam returned error: %v", err)
	}
	if result.Correct != 1 {
		t.Fatalf("expected 1 correct, got %d", result.Correct)
	}
	if result.Score != 2.5 {
		t.Fatalf("expected score 2.5, got %v", result.Score)
	}
}

// TestScoreExamIgnoresExtraneousAnswers ensures stray question ids and
// out-of-range options never score and never panic.
func TestScoreExamIgnoresExtraneousAnswers(t *testing.T) {
	questions := makeQuestions(2)

	answers := map[string]int{
		questions[0].ID.String(): questions[0].CorrectOption,
		questions[1].ID.String(): 99,
		uuid.New().String():      1,
	}

	result, err := ScoreExam(questions, answers)
	if err != nil {
		t.Fatalf("ScoreExam returned error: %v", err)
	}
	if result.Correct != 1 {
		t.Fatalf("expected 1 correct, got %d", result.Correct)
	}
}

func TestScoreExamNoQuestions(t *testing.T) {
	_, err := ScoreExam(nil, map[string]int{"x": 1})
	if !errors.Is(err, ErrNoQuestions) {
		t.Fatalf("expected ErrNoQuestions, got %v", err)
	}
}

// TestScoreExamBounds checks the score stays within [0, 10] at the
// extremes.
func TestScoreExamBounds(t *testing.T) {
	questions := makeQuestions(7)

	result, err := ScoreExam(questions, map[string]int{})
	if err != nil {
		t.Fatalf("ScoreExam returned error: %v", err)
	}
	if result.Score != 0 {
		t.Fatalf("expected score 0 for empty answers, got %v", result.Score)
	}

	all := make(map[string]int)
	for _, q := range questions {
		all[q.ID.String()] = q.CorrectOption
	}
	result, err = ScoreExam(questions, all)
	if err != nil {
		t.Fatalf("ScoreExam returned error: %v", err)
	}
	if result.Score != 10 {
		t.Fatalf("expected score 10 for all correct, got %v", result.Score)
	}
}

// TestRoundScore verifies display rounding without disturbing the
// full-precision comparison value.
func TestRoundScore(t *testing.T) {
	questions := makeQuestions(3)
	answers := map[string]int{
		questions[0].ID.String(): questions[0].CorrectOption,
		questions[1].ID.String(): questions[1].CorrectOption,
	}

	result, err := ScoreExam(questions, answers)
	if err != nil {
		t.Fatalf("ScoreExam returned error: %v", err)
	}
	if RoundScore(result.Score) != 6.7 {
		t.Fatalf("expected rounded 6.7, got %v", RoundScore(result.Score))
	}
	if result.Score >= PassingScore {
		t.Fatalf("2/3 must not pass, full-precision score was %v", result.Score)
	}
}
