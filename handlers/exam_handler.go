package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/eadflow/academy_backend/database"
	"github.com/eadflow/academy_backend/middleware"
	"github.com/eadflow/academy_backend/models"
	"github.com/eadflow/academy_backend/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ExamQuestionRequest struct {
	QuestionNum   int    `json:"question_num" validate:"required,gt=0"`
	Statement     string `json:"statement" validate:"required"`
	Option1       string `json:"option_1" validate:"required"`
	Option2       string `json:"option_2" validate:"required"`
	Option3       string `json:"option_3" validate:"required"`
	Option4       string `json:"option_4" validate:"required"`
	Option5       string `json:"option_5" validate:"required"`
	CorrectOption int    `json:"correct_option" validate:"required,min=1,max=5"`
}

func CreateExamQuestion(c *fiber.Ctx) error {
	courseID, err := uuid.Parse(c.Params("courseId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid course ID format"})
	}

	var req ExamQuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var course models.Course
	if err := database.DB.First(&course, "id = ?", courseID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
	}

	question := models.ExamQuestion{
		CourseID:      courseID,
		QuestionNum:   req.QuestionNum,
		Statement:     req.Statement,
		Option1:       req.Option1,
		Option2:       req.Option2,
		Option3:       req.Option3,
		Option4:       req.Option4,
		Option5:       req.Option5,
		CorrectOption: req.CorrectOption,
	}
	if err := database.DB.Create(&question).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create question"})
	}

	return c.Status(fiber.StatusCreated).JSON(question)
}

func ListExamQuestions(c *fiber.Ctx) error {
	courseID := c.Params("courseId")
	var questions []models.ExamQuestion
	database.DB.Where("course_id = ?", courseID).Order("question_num asc").Find(&questions)
	return c.JSON(questions)
}

func UpdateExamQuestion(c *fiber.Ctx) error {
	questionID := c.Params("questionId")
	var question models.ExamQuestion
	if err := database.DB.First(&question, "id = ?", questionID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Question not found"})
	}

	var req ExamQuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	question.QuestionNum = req.QuestionNum
	question.Statement = req.Statement
	question.Option1 = req.Option1
	question.Option2 = req.Option2
	question.Option3 = req.Option3
	question.Option4 = req.Option4
	question.Option5 = req.Option5
	question.CorrectOption = req.CorrectOption
	database.DB.Save(&question)

	return c.JSON(question)
}

func DeleteExamQuestion(c *fiber.Ctx) error {
	questionID := c.Params("questionId")
	result := database.DB.Delete(&models.ExamQuestion{}, "id = ?", questionID)

	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete question"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Question not found"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetExamStatus reports where the student stands for a course exam:
// the lifecycle state, attempts used, and when the exam unlocks.
func GetExamStatus(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	courseID, err := uuid.Parse(c.Params("courseId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid course ID format"})
	}

	var enrollment *models.Enrollment
	var found models.Enrollment
	err = database.DB.Where("user_id = ? AND course_id = ?", userID, courseID).First(&found).Error
	if err == nil {
		enrollment = &found
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load enrollment"})
	}

	history, err := services.AttemptHistory(database.DB, userID, courseID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load attempts"})
	}

	state := services.ExamStateFor(enrollment, history, time.Now())

	resp := fiber.Map{
		"state":              state,
		"attempts_used":      len(history),
		"max_attempts":       services.MaxAttempts,
		"remaining_attempts": max(0, services.MaxAttempts-len(history)),
	}
	if enrollment != nil {
		resp["exam_available_after"] = enrollment.ExamAvailableAfter
	}
	if state == services.StatePassed {
		for _, attempt := range history {
			if attempt.Score >= services.PassingScore {
				resp["passing_score"] = services.RoundScore(attempt.Score)
				break
			}
		}
	}
	return c.JSON(resp)
}

// GetExamPaper hands the student the questions without the answer key.
// The key never leaves the scoring path.
func GetExamPaper(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	courseID, err := uuid.Parse(c.Params("courseId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid course ID format"})
	}

	var enrollment models.Enrollment
	if err := database.DB.Where("user_id = ? AND course_id = ?", userID, courseID).First(&enrollment).Error; err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Not enrolled in this course"})
	}
	if time.Now().Before(enrollment.ExamAvailableAfter) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":                "Exam not yet available",
			"exam_available_after": enrollment.ExamAvailableAfter,
		})
	}

	var questions []models.ExamQuestion
	database.DB.Where("course_id = ?", courseID).Order("question_num asc").Find(&questions)
	if len(questions) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No questions found for this course"})
	}

	type QuestionForStudent struct {
		ID          uuid.UUID `json:"id"`
		QuestionNum int       `json:"question_num"`
		Statement   string    `json:"statement"`
		Options     [5]string `json:"options"`
	}

	paper := make([]QuestionForStudent, len(questions))
	for i, q := range questions {
		paper[i] = QuestionForStudent{
			ID:          q.ID,
			QuestionNum: q.QuestionNum,
			Statement:   q.Statement,
			Options:     [5]string{q.Option1, q.Option2, q.Option3, q.Option4, q.Option5},
		}
	}

	return c.JSON(fiber.Map{"questions": paper, "total": len(paper)})
}

type SubmitExamRequest struct {
	Answers map[string]int `json:"answers"`
}

// SubmitExam grades a submission and records the attempt. The
// preconditions are re-checked inside the same transaction that inserts
// the attempt; two concurrent submissions that both read the same
// history collide on the unique (user, course, attempt_number) index,
// so the attempt limit and the no-retake-after-pass rule hold without
// long-lived locks.
func SubmitExam(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	courseID, err := uuid.Parse(c.Params("courseId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid course ID format"})
	}

	var req SubmitExamRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if len(req.Answers) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid submission data"})
	}

	var (
		result        services.ScoreResult
		attemptNumber int
		decision      services.AttemptDecision
	)

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		var enrollment models.Enrollment
		if err := tx.Where("user_id = ? AND course_id = ?", userID, courseID).
			First(&enrollment).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return services.ErrNotEnrolled
			}
			return err
		}

		history, err := services.AttemptHistory(tx, userID, courseID)
		if err != nil {
			return err
		}

		decision = services.CanAttempt(&enrollment, history, time.Now())
		if !decision.Allowed {
			return services.DecisionError(decision)
		}

		var questions []models.ExamQuestion
		if err := tx.Where("course_id = ?", courseID).Find(&questions).Error; err != nil {
			return err
		}

		result, err = services.ScoreExam(questions, req.Answers)
		if err != nil {
			return err
		}

		answersJSON, err := json.Marshal(req.Answers)
		if err != nil {
			return err
		}

		attemptNumber = len(history) + 1
		attempt := models.ExamResult{
			UserID:        userID,
			CourseID:      courseID,
			AttemptNumber: attemptNumber,
			Score:         result.Score,
			Answers:       datatypes.JSON(answersJSON),
			CompletedAt:   time.Now(),
		}
		return tx.Create(&attempt).Error
	})

	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotEnrolled):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Not enrolled in this course"})
		case errors.Is(err, services.ErrExamNotAvailable):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Exam not yet available"})
		case errors.Is(err, services.ErrAlreadyPassed):
			// Issuance is idempotent, so re-invoking it here heals a
			// pass whose certificate generation failed earlier.
			if _, issueErr := services.IssueCertificate(database.DB, userID, courseID); issueErr != nil {
				log.Printf("🔥 Failed to issue certificate for user %s course %s: %v", userID, courseID, issueErr)
			}
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "You have already passed this exam",
				"score": services.RoundScore(decision.PassingScore),
			})
		case errors.Is(err, services.ErrAttemptsExhausted):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error":    "All exam attempts have been used",
				"attempts": services.MaxAttempts,
			})
		case errors.Is(err, services.ErrNoQuestions):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No questions found for this course"})
		case errors.Is(err, gorm.ErrDuplicatedKey):
			// A concurrent submission claimed this attempt ordinal.
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "A submission is already being processed, please try again"})
		}
		log.Printf("🔥 Failed to record exam attempt for user %s course %s: %v", userID, courseID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to submit exam"})
	}

	// The attempt is the system of record. Certificate issuance runs
	// after the commit; if it fails, the pass stands and the next
	// submission attempt re-triggers issuance from the AlreadyPassed
	// path above.
	if result.Score >= services.PassingScore {
		cert, err := services.IssueCertificate(database.DB, userID, courseID)
		if err != nil {
			log.Printf("🔥 Failed to issue certificate for user %s course %s: %v", userID, courseID, err)
		} else {
			go services.GenerateCertificateAsset(cert.ID)
		}
	}

	return c.JSON(fiber.Map{
		"score":              services.RoundScore(result.Score),
		"total":              result.Total,
		"correct":            result.Correct,
		"attempt":            attemptNumber,
		"max_attempts":       services.MaxAttempts,
		"remaining_attempts": max(0, services.MaxAttempts-attemptNumber),
	})
}
