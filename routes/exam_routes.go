package routes

import (
	"github.com/eadflow/academy_backend/handlers"
	"github.com/eadflow/academy_backend/middleware"
	"github.com/gofiber/fiber/v2"
)

func ExamRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	admin := api.Group("/admin/exams", middleware.Protected(), middleware.AdminRequired())
	admin.Post("/:courseId/questions", handlers.CreateExamQuestion)
	admin.Get("/:courseId/questions", handlers.ListExamQuestions)
	admin.Put("/questions/:questionId", handlers.UpdateExamQuestion)
	admin.Delete("/questions/:questionId", handlers.DeleteExamQuestion)

	exams := api.Group("/exams", middleware.Protected())
	exams.Get("/:courseId/status", handlers.GetExamStatus)
	exams.Get("/:courseId/paper", handlers.GetExamPaper)
	exams.Post("/:courseId/submit", handlers.SubmitExam)
}
