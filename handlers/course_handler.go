package handlers

import (
	"github.com/eadflow/academy_backend/database"
	"github.com/eadflow/academy_backend/middleware"
	"github.com/eadflow/academy_backend/models"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CourseRequest struct {
	Title            string  `json:"title" validate:"required"`
	Description      *string `json:"description"`
	ShortDescription *string `json:"short_description"`
	Price            float64 `json:"price" validate:"gte=0"`
	Workload         *string `json:"workload"`
	ImageURL         *string `json:"image_url"`
	Num              *int    `json:"num"`
	Active           *bool   `json:"active"`
}

func CreateCourse(c *fiber.Ctx) error {
	var req CourseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	course := models.Course{
		Title:            req.Title,
		Description:      req.Description,
		ShortDescription: req.ShortDescription,
		Price:            req.Price,
		Workload:         req.Workload,
		ImageURL:         req.ImageURL,
		Num:              req.Num,
		Active:           true,
	}
	if req.Active != nil {
		course.Active = *req.Active
	}

	if err := database.DB.Create(&course).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create course"})
	}

	return c.Status(fiber.StatusCreated).JSON(course)
}

func UpdateCourse(c *fiber.Ctx) error {
	courseID := c.Params("courseId")
	var course models.Course
	if err := database.DB.First(&course, "id = ?", courseID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
	}

	var req CourseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	course.Title = req.Title
	course.Description = req.Description
	course.ShortDescription = req.ShortDescription
	course.Price = req.Price
	course.Workload = req.Workload
	course.ImageURL = req.ImageURL
	course.Num = req.Num
	if req.Active != nil {
		course.Active = *req.Active
	}
	if err := database.DB.Save(&course).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update course"})
	}

	return c.JSON(course)
}

func DeleteCourse(c *fiber.Ctx) error {
	courseID := c.Params("courseId")
	result := database.DB.Delete(&models.Course{}, "id = ?", courseID)

	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete course"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListCourses is the public catalog: active courses only, shop order.
func ListCourses(c *fiber.Ctx) error {
	var courses []models.Course
	database.DB.Where("active = ?", true).Order("num asc, created_at asc").Find(&courses)
	return c.JSON(courses)
}

func GetCourse(c *fiber.Ctx) error {
	courseID := c.Params("courseId")
	var course models.Course
	if err := database.DB.First(&course, "id = ? AND active = ?", courseID, true).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
	}
	return c.JSON(course)
}

// GetCourseContent returns the videos and files of a course. Only for
// enrolled students; the catalog endpoints never include content.
func GetCourseContent(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	courseID := c.Params("courseId")

	var enrollment models.Enrollment
	if err := database.DB.Where("user_id = ? AND course_id = ?", userID, courseID).First(&enrollment).Error; err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Not enrolled in this course"})
	}

	var course models.Course
	if err := database.DB.
		Preload("Videos", func(db *gorm.DB) *gorm.DB { return db.Order("order_index asc") }).
		Preload("Files").
		First(&course, "id = ?", courseID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
	}

	return c.JSON(fiber.Map{
		"course":               course,
		"enrolled_at":          enrollment.EnrolledAt,
		"exam_available_after": enrollment.ExamAvailableAfter,
	})
}

type CourseVideoRequest struct {
	Title      string `json:"title" validate:"required"`
	YoutubeURL string `json:"youtube_url" validate:"required,url"`
	OrderIndex int    `json:"order_index"`
}

func AddCourseVideo(c *fiber.Ctx) error {
	courseID := c.Params("courseId")
	var course models.Course
	if err := database.DB.First(&course, "id = ?", courseID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
	}

	var req CourseVideoRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	video := models.CourseVideo{
		CourseID:   course.ID,
		Title:      req.Title,
		YoutubeURL: req.YoutubeURL,
		OrderIndex: req.OrderIndex,
	}
	if err := database.DB.Create(&video).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to add video"})
	}
	return c.Status(fiber.StatusCreated).JSON(video)
}

type CourseFileRequest struct {
	Title   string `json:"title" validate:"required"`
	FileURL string `json:"file_url" validate:"required,url"`
}

func AddCourseFile(c *fiber.Ctx) error {
	courseID := c.Params("courseId")
	var course models.Course
	if err := database.DB.First(&course, "id = ?", courseID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
	}

	var req CourseFileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	file := models.CourseFile{
		CourseID: course.ID,
		Title:    req.Title,
		FileURL:  req.FileURL,
	}
	if err := database.DB.Create(&file).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to add file"})
	}
	return c.Status(fiber.StatusCreated).JSON(file)
}
