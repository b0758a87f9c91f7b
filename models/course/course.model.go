package course

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DisplayPrice is the denormalized price shown with a course.
type DisplayPrice struct {
	Amount   float64 `bson:"amount" json:"amount"`
	Currency string  `bson:"currency,omitempty" json:"currency,omitempty"`
}

// EnrolledUser is one entry of a course's denormalized membership set.
type EnrolledUser struct {
	UserID   string `bson:"user_id" json:"user_id"`
	Username string `bson:"username" json:"username"`
}

// Course is a document in the "courses" collection. Fields outside the
// typed set live in Metadata (category, tags, mode, audit fields, ...).
type Course struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CourseTitle       string             `bson:"course_title" json:"course_title"`
	CourseDescription string             `bson:"course_description,omitempty" json:"course_description,omitempty"`
	Segment           string             `bson:"segment,omitempty" json:"segment,omitempty"`
	CourseType        string             `bson:"course_type,omitempty" json:"course_type,omitempty"`
	DeliveryMode      string             `bson:"delivery_mode,omitempty" json:"delivery_mode,omitempty"`
	IsLocked          bool               `bson:"is_locked" json:"is_locked"`
	CourseStartDate   string             `bson:"course_start_date,omitempty" json:"course_start_date,omitempty"`
	CourseEndDate     string             `bson:"course_end_date,omitempty" json:"course_end_date,omitempty"`
	Metadata          bson.M             `bson:"metadata,omitempty" json:"metadata,omitempty"`
	ModuleIDs         []string           `bson:"module_ids,omitempty" json:"module_ids,omitempty"`
	ImageURL          string             `bson:"image_url,omitempty" json:"image_url,omitempty"`
	Enrollers         int64              `bson:"enrollers" json:"enrollers"`
	Progress          int64              `bson:"progress" json:"progress"`
	DifficultyLevel   string             `bson:"difficulty_level,omitempty" json:"difficulty_level,omitempty"`
	CourseDuration    string             `bson:"course_duration,omitempty" json:"course_duration,omitempty"`
	DisplayPrice      *DisplayPrice      `bson:"display_price,omitempty" json:"display_price,omitempty"`
	EnrolledUsers     []EnrolledUser     `bson:"enrolled_users,omitempty" json:"enrolled_users,omitempty"`
	CreatedAt         string             `bson:"created_at,omitempty" json:"created_at,omitempty"`
	UpdatedAt         string             `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}
