package course

import "go.mongodb.org/mongo-driver/bson/primitive"

// Enrollment statuses
const (
	StatusSelfEnrolled    = "self_enrolled"
	StatusAssigned        = "assigned"
	StatusAssignedByAdmin = "assigned_by_admin"
)

// Enrollment is a document in the "enrollments" collection. Username and
// Price are denormalized at enrollment time: Username for display, Price
// as a snapshot of the course's display price at the moment of enrolling.
type Enrollment struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     string             `bson:"user_id" json:"user_id"`
	Username   string             `bson:"username" json:"username"`
	CourseID   string             `bson:"course_id" json:"course_id"`
	Status     string             `bson:"status" json:"status"`
	Price      float64            `bson:"price" json:"price"`
	EnrolledAt string             `bson:"enrolled_at" json:"enrolled_at"`
}
