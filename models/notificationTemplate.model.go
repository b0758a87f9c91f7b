package models

import "gorm.io/gorm"

// Notification event names. Templates are looked up by event name;
// subject and body may contain {{placeholder}} tokens.
const (
	EventUserRegistered     = "USER_REGISTERED"
	EventUserForgotPassword = "USER_FORGOT_PASSWORD"
	EventUserPasswordReset  = "USER_PASSWORD_RESET"
	EventCourseEnrolled     = "COURSE_ENROLLED"
	EventCourse50Percent    = "COURSE_50_PERCENT"
	EventCourseCompleted    = "COURSE_COMPLETED"
)

type NotificationTemplate struct {
	gorm.Model
	EventName string `gorm:"size:50;unique;not null" json:"event_name"`
	Subject   string `gorm:"size:255;not null" json:"subject"`
	Body      string `gorm:"type:text;not null" json:"body"`
}
