package controllers

import (
	"errors"
	"log"
	"strconv"

	"courseapi/database"
	"courseapi/middleware"
	"courseapi/models"
	courseModels "courseapi/models/course"
	"courseapi/services/enrollment"
	"courseapi/store"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
)

// currentUser loads the authenticated account set by the JWT middleware.
func currentUser(c *fiber.Ctx) (*models.User, error) {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return nil, errors.New("missing user id")
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func principalOf(user *models.User) enrollment.User {
	return enrollment.User{
		ID:       strconv.FormatUint(uint64(user.ID), 10),
		Username: user.Username,
		Email:    user.Email,
	}
}

// workflowStatus maps a workflow error onto the wire, 400 with a stable
// code for both invalid course and duplicate enrollment.
func workflowErrorResponse(c *fiber.Ctx, err error) error {
	var wfErr *enrollment.WorkflowError
	if errors.As(err, &wfErr) {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, wfErr.Code, wfErr.Detail)
	}
	log.Printf("Enrollment workflow failed: %v", err)
	return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "internal_error", "Enrollment failed")
}

// EnrollInCourse handles user self-enrollment.
func EnrollInCourse(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	courseID := c.Locals("courseID").(string)

	result, err := enrollSvc.SelfEnroll(c.Context(), principalOf(user), courseID)
	if err != nil {
		return workflowErrorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(result.Enrollment)
}

// AssignUserToCourse handles admin assignment of a single user.
func AssignUserToCourse(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(string)
	targetID := c.Locals("assignUserID").(uint)

	var target models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", targetID, false).First(&target).Error; err != nil {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "invalid_user", "User not found")
	}

	result, err := enrollSvc.Enroll(c.Context(), principalOf(&target), courseID, courseModels.StatusAssignedByAdmin)
	if err != nil {
		return workflowErrorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

// AssignMultipleUsers handles admin bulk assignment. Users whose ids do
// not resolve are reported separately from workflow-level skips.
func AssignMultipleUsers(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(string)
	targetIDs := c.Locals("assignUserIDs").([]uint)

	var (
		users      []enrollment.User
		userEmails = map[string]string{}
		invalidIDs []uint
	)
	for _, id := range targetIDs {
		var user models.User
		if err := database.Database.Db.Where("id = ? AND is_deleted = ?", id, false).First(&user).Error; err != nil {
			invalidIDs = append(invalidIDs, id)
			continue
		}
		p := principalOf(&user)
		users = append(users, p)
		userEmails[p.ID] = p.Email
	}

	result, err := enrollSvc.AssignMultiple(c.Context(), users, courseID)
	if err != nil {
		return workflowErrorResponse(c, err)
	}

	// Notify every user that actually got assigned.
	if notifySvc != nil {
		title, _ := result.Course["course_title"].(string)
		for _, assigned := range result.Assigned {
			err := notifySvc.Send(models.EventCourseEnrolled, map[string]string{
				"username": assigned.Username,
				"course":   title,
			}, userEmails[assigned.ID])
			if err != nil {
				log.Printf("Assignment notification failed for user %s: %v", assigned.ID, err)
			}
		}
	}

	if invalidIDs == nil {
		invalidIDs = []uint{}
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"course_id":        result.CourseID,
		"course":           result.Course,
		"assigned":         result.Assigned,
		"skipped":          result.Skipped,
		"invalid_user_ids": invalidIDs,
	})
}

// CreateEnrollment enrolls the caller into the course named in the body.
func CreateEnrollment(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	courseID := c.Locals("courseID").(string)

	result, err := enrollSvc.SelfEnroll(c.Context(), principalOf(user), courseID)
	if err != nil {
		return workflowErrorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

// MyEnrollments lists every course enrollment of the caller.
func MyEnrollments(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	userID := strconv.FormatUint(uint64(user.ID), 10)
	docs, err := database.Mongo.Enrollments.Find(c.Context(), bson.M{"user_id": userID}, store.FindOptions{})
	if err != nil {
		log.Printf("Failed to fetch enrollments for user %s: %v", userID, err)
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "internal_error", "Failed to fetch enrollments")
	}

	return c.JSON(fiber.Map{
		"username":         user.Username,
		"enrolled_courses": store.NormalizeDocs(docs),
	})
}
