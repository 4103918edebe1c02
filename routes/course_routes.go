package routes

import (
	"github.com/eadflow/academy_backend/handlers"
	"github.com/eadflow/academy_backend/middleware"
	"github.com/gofiber/fiber/v2"
)

func CourseRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	// Public catalog.
	api.Get("/courses", handlers.ListCourses)
	api.Get("/courses/:courseId", handlers.GetCourse)

	// Enrolled-student content.
	api.Get("/courses/:courseId/content", middleware.Protected(), handlers.GetCourseContent)

	admin := api.Group("/admin/courses", middleware.Protected(), middleware.AdminRequired())
	admin.Post("", handlers.CreateCourse)
	admin.Put("/:courseId", handlers.UpdateCourse)
	admin.Delete("/:courseId", handlers.DeleteCourse)
	admin.Post("/:courseId/videos", handlers.AddCourseVideo)
	admin.Post("/:courseId/files", handlers.AddCourseFile)
}
