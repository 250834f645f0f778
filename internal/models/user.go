package models

import "time"

// User represents the user model in the database
type User struct {
	Base
	Email               string     `gorm:"uniqueIndex;not null" json:"email"`
	Password            string     `gorm:"not null" json:"-"`
	FirstName           string     `json:"first_name"`
	LastName            string     `json:"last_name"`
	IsActive            bool       `gorm:"default:true" json:"is_active"`
	CurrentGroupID      *string    `gorm:"type:uuid;index" json:"current_group_id,omitempty"`
	RefreshTokenHash    string     `gorm:"size:64" json:"-"`
	FailedLoginAttempts int        `gorm:"default:0" json:"-"`
	LockedUntil         *time.Time `json:"-"`
	LastLoginAt         *time.Time `json:"last_login_at,omitempty"`
}

// GroupID returns the user's current group, or "" if none is set.
func (u *User) GroupID() string {
	if u.CurrentGroupID == nil {
		return ""
	}
	return *u.CurrentGroupID
}
