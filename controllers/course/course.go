package controllers

import (
	"errors"
	"log"
	"time"

	"courseapi/database"
	"courseapi/middleware"
	courseModels "courseapi/models/course"
	"courseapi/services/enrollment"
	"courseapi/store"
	courseValidator "courseapi/validators/course"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
)

// Package-level workflow handles, wired once at startup.
var (
	enrollSvc *enrollment.Service
	notifySvc enrollment.Notifier
)

// Init wires the course controllers to their workflow services.
func Init(svc *enrollment.Service, notifier enrollment.Notifier) {
	enrollSvc = svc
	notifySvc = notifier
}

// GetAllCourses lists courses with filtering, sorting, projection, and
// pagination.
func GetAllCourses(c *fiber.Ctx) error {
	q, ok := c.Locals("courseQuery").(*store.CourseQuery)
	if !ok {
		q = &store.CourseQuery{Page: 1, Limit: 10}
	}

	docs, total, err := store.ListCourses(c.Context(), database.Mongo.Courses, q)
	if err != nil {
		log.Printf("Failed to list courses: %v", err)
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "internal_error", "Failed to fetch courses")
	}

	return c.JSON(fiber.Map{
		"total":   total,
		"page":    q.Page,
		"limit":   q.Limit,
		"results": docs,
	})
}

// GetCourseDetails fetches one course, accepting ObjectId or string ids.
func GetCourseDetails(c *fiber.Ctx) error {
	id := c.Locals("courseID").(string)

	doc, err := database.Mongo.Courses.FindByID(c.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "course_not_found", "Course not found")
	}
	if err != nil {
		log.Printf("Failed to fetch course %s: %v", id, err)
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "internal_error", "Failed to fetch course")
	}

	return c.JSON(store.NormalizeDoc(doc))
}

// CreateCourse inserts a new course document with audit timestamps.
func CreateCourse(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedCourse").(*courseValidator.CourseCreate)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	doc := courseModels.Course{
		CourseTitle:       reqData.CourseTitle,
		CourseDescription: reqData.CourseDescription,
		Segment:           reqData.Segment,
		CourseType:        reqData.CourseType,
		DeliveryMode:      reqData.DeliveryMode,
		IsLocked:          reqData.IsLocked,
		CourseStartDate:   reqData.CourseStartDate,
		CourseEndDate:     reqData.CourseEndDate,
		Metadata:          bson.M(reqData.Metadata),
		ModuleIDs:         reqData.ModuleIDs,
		ImageURL:          reqData.ImageURL,
		Enrollers:         reqData.Enrollers,
		Progress:          reqData.Progress,
		DifficultyLevel:   reqData.DifficultyLevel,
		CourseDuration:    reqData.CourseDuration,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if reqData.DisplayPrice != nil {
		doc.DisplayPrice = &courseModels.DisplayPrice{
			Amount:   reqData.DisplayPrice.Amount,
			Currency: reqData.DisplayPrice.Currency,
		}
	}

	id, err := database.Mongo.Courses.InsertOne(c.Context(), doc)
	if err != nil {
		log.Printf("Failed to create course: %v", err)
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "internal_error", "Failed to create course")
	}

	saved, err := database.Mongo.Courses.FindByID(c.Context(), id.Hex())
	if err != nil {
		log.Printf("Failed to read back course %s: %v", id.Hex(), err)
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "internal_error", "Failed to create course")
	}

	return c.Status(fiber.StatusCreated).JSON(store.NormalizeDoc(saved))
}
