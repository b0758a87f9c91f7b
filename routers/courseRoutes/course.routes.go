package courseRoutes

import (
	controllers "courseapi/controllers/course"
	"courseapi/middleware"
	validators "courseapi/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes sets up all authenticated course API routes
func SetupCourseRoutes(app *fiber.App) {
	api := app.Group("/api", middleware.JWTMiddleware)

	// Courses
	api.Get("/courses", validators.CourseList(), controllers.GetAllCourses)
	api.Post("/courses", validators.CreateCourse(), controllers.CreateCourse)
	api.Get("/courses/:id", validators.GetCourseDetail(), controllers.GetCourseDetails)

	// Enrollment
	api.Post("/courses/:id/enroll", validators.EnrollCourse(), controllers.EnrollInCourse)
	api.Post("/enrollments", validators.CreateEnrollment(), controllers.CreateEnrollment)
	api.Get("/enrollments/my", controllers.MyEnrollments)

	// Modules / Topics / Contents
	api.Get("/modules", controllers.GetAllModules)
	api.Post("/modules", validators.CreateModule(), controllers.CreateModule)
	api.Get("/topics", controllers.GetAllTopics)
	api.Post("/topics", validators.CreateTopic(), controllers.CreateTopic)
	api.Get("/contents", controllers.GetAllContents)
	api.Post("/contents", validators.CreateContent(), controllers.CreateContent)
}
