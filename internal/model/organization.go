package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Organization statuses
const (
	OrgStatusActive    = "active"
	OrgStatusSuspended = "suspended"
)

// Organization is the tenant: a dental practice and its subscription state.
// Features holds the module flags enabled for the practice.
type Organization struct {
	ID          string         `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string         `json:"name" gorm:"type:varchar(150);not null"`
	Email       string         `json:"email" gorm:"type:varchar(150)"`
	Phone       string         `json:"phone" gorm:"type:varchar(30)"`
	Address     string         `json:"address" gorm:"type:text"`
	Plan        string         `json:"plan" gorm:"type:varchar(30);not null;default:'basic'"`
	Status      string         `json:"status" gorm:"type:varchar(20);not null;default:'active'"`
	Features    pq.StringArray `json:"features" gorm:"type:text[]"`
	MaxUsers    int            `json:"max_users"`
	MaxPatients int            `json:"max_patients"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}
