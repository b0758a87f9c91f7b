package courseValidator

import (
	"strings"

	"courseapi/middleware"

	"github.com/gofiber/fiber/v2"
)

// EnrollCourse validates the course id on enroll/assign routes.
func EnrollCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := strings.TrimSpace(c.Params("id"))
		if id == "" {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "invalid_course", "Course ID is required")
		}
		c.Locals("courseID", id)
		return c.Next()
	}
}

// AssignUser validates the admin single-assignment body.
func AssignUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := strings.TrimSpace(c.Params("id"))
		if id == "" {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "invalid_course", "Course ID is required")
		}

		reqData := new(struct {
			UserID uint `json:"user_id"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if reqData.UserID == 0 {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "user_id_required", "user_id is required")
		}

		c.Locals("courseID", id)
		c.Locals("assignUserID", reqData.UserID)
		return c.Next()
	}
}

// AssignMultiple validates the admin bulk-assignment body.
func AssignMultiple() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := strings.TrimSpace(c.Params("id"))
		if id == "" {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "invalid_course", "Course ID is required")
		}

		reqData := new(struct {
			UserIDs []uint `json:"user_ids"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if len(reqData.UserIDs) == 0 {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "user_ids_required", "user_ids must be a non-empty list")
		}

		c.Locals("courseID", id)
		c.Locals("assignUserIDs", reqData.UserIDs)
		return c.Next()
	}
}

// CreateEnrollment validates the direct enrollment creation body.
func CreateEnrollment() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			CourseID string `json:"course_id"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		reqData.CourseID = strings.TrimSpace(reqData.CourseID)
		if reqData.CourseID == "" {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "invalid_course", "course_id is required")
		}

		c.Locals("courseID", reqData.CourseID)
		return c.Next()
	}
}
