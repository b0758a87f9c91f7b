package enrollment

import (
	"context"
	"errors"
	"log"
	"time"

	"courseapi/models"
	courseModels "courseapi/models/course"
	"courseapi/store"

	"go.mongodb.org/mongo-driver/bson"
)

// WorkflowError carries a stable machine-readable code alongside the
// human-readable detail that goes on the wire.
type WorkflowError struct {
	Code   string
	Detail string
}

func (e *WorkflowError) Error() string {
	return e.Code + ": " + e.Detail
}

var (
	ErrCourseNotFound  = &WorkflowError{Code: "course_not_found", Detail: "Course not found"}
	ErrAlreadyEnrolled = &WorkflowError{Code: "already_enrolled", Detail: "User already enrolled"}
)

// User is the authenticated principal the workflow acts for. ID is the
// string form of the account id, as stored on enrollment documents.
type User struct {
	ID       string
	Username string
	Email    string
}

// Notifier is the notification dispatcher boundary.
type Notifier interface {
	Send(eventName string, ctx map[string]string, toEmail string) error
}

// Service runs the enrollment workflow over injected store collections.
type Service struct {
	courses     store.Collection
	enrollments store.Collection
	notifier    Notifier
}

func NewService(courses, enrollments store.Collection, notifier Notifier) *Service {
	return &Service{courses: courses, enrollments: enrollments, notifier: notifier}
}

// Result is the outcome of a single enrollment: the saved enrollment
// record and the updated course snapshot, both id-normalized.
type Result struct {
	Course     bson.M `json:"course"`
	Enrollment bson.M `json:"enrollment"`
}

// Enroll enrolls a user into a course with the given status.
//
// The existence check and the insert are two separate store calls, so two
// concurrent requests for the same (user, course) can both pass the check
// and produce duplicate records. The store keeps no uniqueness constraint
// on the pair; this matches the system this replaces.
func (s *Service) Enroll(ctx context.Context, user User, courseID, status string) (*Result, error) {
	course, err := s.findCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	saved, err := s.enrollOne(ctx, user, course, status)
	if err != nil {
		return nil, err
	}

	// Notification failure never unwinds the enrollment.
	if s.notifier != nil {
		title, _ := course["course_title"].(string)
		err := s.notifier.Send(models.EventCourseEnrolled, map[string]string{
			"username": user.Username,
			"course":   title,
		}, user.Email)
		if err != nil {
			log.Printf("Enrollment notification failed for user %s: %v", user.ID, err)
		}
	}

	updated := s.refetch(ctx, course)
	return &Result{
		Course:     store.NormalizeDoc(updated),
		Enrollment: store.NormalizeDoc(saved),
	}, nil
}

// SelfEnroll is Enroll with the user-initiated status.
func (s *Service) SelfEnroll(ctx context.Context, user User, courseID string) (*Result, error) {
	return s.Enroll(ctx, user, courseID, courseModels.StatusSelfEnrolled)
}

// UserRef identifies one user in a bulk assignment outcome.
type UserRef struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// SkippedUser is a user the bulk assignment did not enroll, with the
// machine-readable reason.
type SkippedUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Reason   string `json:"reason"`
}

// BulkResult partitions every input user of AssignMultiple into exactly
// one of Assigned or Skipped.
type BulkResult struct {
	CourseID string        `json:"course_id"`
	Assigned []UserRef     `json:"assigned"`
	Skipped  []SkippedUser `json:"skipped"`
	Course   bson.M        `json:"course"`
}

// AssignMultiple resolves the course once and enrolls each user in turn
// with the admin-assigned status. Already-enrolled users and per-user
// failures land in Skipped; the loop never aborts early.
func (s *Service) AssignMultiple(ctx context.Context, users []User, courseID string) (*BulkResult, error) {
	course, err := s.findCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	result := &BulkResult{
		CourseID: courseIDString(course),
		Assigned: []UserRef{},
		Skipped:  []SkippedUser{},
	}

	for _, user := range users {
		_, err := s.enrollOne(ctx, user, course, courseModels.StatusAssigned)
		if err != nil {
			reason := "unknown"
			var wfErr *WorkflowError
			if errors.As(err, &wfErr) {
				reason = wfErr.Code
			}
			result.Skipped = append(result.Skipped, SkippedUser{
				ID:       user.ID,
				Username: user.Username,
				Reason:   reason,
			})
			continue
		}
		result.Assigned = append(result.Assigned, UserRef{ID: user.ID, Username: user.Username})
	}

	result.Course = store.NormalizeDoc(s.refetch(ctx, course))
	return result, nil
}

// findCourse resolves a course id, accepting both the ObjectID encoding
// and plain string ids.
func (s *Service) findCourse(ctx context.Context, courseID string) (bson.M, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrCourseNotFound
	}
	if err != nil {
		return nil, err
	}
	return course, nil
}

// enrollOne runs steps 2-5 of the workflow against an already resolved
// course: duplicate check, price snapshot, record insert, best-effort
// counter/membership update.
func (s *Service) enrollOne(ctx context.Context, user User, course bson.M, status string) (bson.M, error) {
	courseID := courseIDString(course)

	_, err := s.enrollments.FindOne(ctx, bson.M{"course_id": courseID, "user_id": user.ID})
	if err == nil {
		return nil, ErrAlreadyEnrolled
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	record := courseModels.Enrollment{
		UserID:     user.ID,
		Username:   user.Username,
		CourseID:   courseID,
		Status:     status,
		Price:      priceAmount(course),
		EnrolledAt: time.Now().UTC().Format(time.RFC3339),
	}

	insertedID, err := s.enrollments.InsertOne(ctx, record)
	if err != nil {
		return nil, err
	}

	// Counter and membership set ride on one atomic per-document update.
	// Its failure leaves the counter stale but the enrollment stands.
	err = s.courses.UpdateByID(ctx, course["_id"], bson.M{
		"$inc": bson.M{"enrollers": 1},
		"$addToSet": bson.M{"enrolled_users": courseModels.EnrolledUser{
			UserID:   user.ID,
			Username: user.Username,
		}},
	})
	if err != nil {
		log.Printf("Best-effort course update failed for course %s: %v", courseID, err)
	}

	saved, err := s.enrollments.FindOne(ctx, bson.M{"_id": insertedID})
	if err != nil {
		// The record is in; fall back to what we wrote.
		doc := bson.M{
			"_id":         insertedID,
			"user_id":     record.UserID,
			"username":    record.Username,
			"course_id":   record.CourseID,
			"status":      record.Status,
			"price":       record.Price,
			"enrolled_at": record.EnrolledAt,
		}
		return doc, nil
	}
	return saved, nil
}

// refetch reloads the course for a post-update snapshot, falling back to
// the pre-update document when the read fails.
func (s *Service) refetch(ctx context.Context, course bson.M) bson.M {
	id := courseIDString(course)
	updated, err := s.courses.FindByID(ctx, id)
	if err != nil {
		return course
	}
	return updated
}

func courseIDString(course bson.M) string {
	if s, ok := store.NormalizeIDs(course["_id"]).(string); ok {
		return s
	}
	return ""
}

func priceAmount(course bson.M) float64 {
	dp, ok := course["display_price"].(bson.M)
	if !ok {
		return 0
	}
	switch v := dp["amount"].(type) {
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case float64:
		return v
	default:
		return 0
	}
}
