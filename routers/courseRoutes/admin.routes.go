package courseRoutes

import (
	controllers "courseapi/controllers/course"
	"courseapi/middleware"
	validators "courseapi/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminCourseRoutes sets up admin-only assignment routes
func SetupAdminCourseRoutes(app *fiber.App) {
	adminGroup := app.Group("/api/courses", middleware.JWTMiddleware, middleware.RequireRole("ADMIN"))

	adminGroup.Post("/:id/assign", validators.AssignUser(), controllers.AssignUserToCourse)
	adminGroup.Post("/:id/assign-multiple", validators.AssignMultiple(), controllers.AssignMultipleUsers)
}
