package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// User statuses
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// User is a member of exactly one organization.
type User struct {
	ID             string         `json:"id" gorm:"type:uuid;primaryKey"`
	OrganizationID string         `json:"organization_id" gorm:"type:uuid;index;not null"`
	Email          string         `json:"email" gorm:"type:varchar(150);uniqueIndex"`
	PasswordHash   string         `json:"-" gorm:"type:varchar(255)"`
	Name           string         `json:"name" gorm:"type:varchar(150)"`
	Role           string         `json:"role" gorm:"type:varchar(20);not null;default:'front_desk'"`
	Status         string         `json:"status" gorm:"type:varchar(20);not null;default:'active'"`
	Permissions    pq.StringArray `json:"permissions" gorm:"type:text[]"`
	LastLoginAt    *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}
