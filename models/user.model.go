package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Name                string     `gorm:"default:''" json:"name"`
	Username            string     `gorm:"unique;not null" json:"username"`
	Email               string     `gorm:"unique;not null" json:"email"`
	Mobile              string     `gorm:"default:''" json:"mobile"`
	Role                string     `gorm:"default:'USER'" json:"role"` // USER, ADMIN
	Password            string     `gorm:"not null" json:"-"`
	IsEmailVerified     bool       `gorm:"default:false" json:"is_email_verified"`
	LastLogin           *time.Time `json:"last_login"`
	FailedLoginAttempts int        `gorm:"default:0" json:"-"`
	IsBlocked           bool       `gorm:"default:false" json:"is_blocked"`
	IsDeleted           bool       `gorm:"default:false" json:"-"`
}
