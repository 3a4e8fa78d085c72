package model

import (
	"time"

	"gorm.io/gorm"
)

// Invoice charged to a patient
type Invoice struct {
	ID             string         `json:"id" gorm:"type:uuid;primaryKey"`
	OrganizationID string         `json:"organization_id" gorm:"type:uuid;index;not null"`
	PatientID      string         `json:"patient_id" gorm:"type:uuid;index;not null"`
	Folio          string         `json:"folio" gorm:"type:varchar(40)"`
	IssuedAt       time.Time      `json:"issued_at"`
	Subtotal       float64        `json:"subtotal" gorm:"type:double precision"`
	Tax            float64        `json:"tax" gorm:"type:double precision"`
	Total          float64        `json:"total" gorm:"type:double precision"`
	PaymentMethod  string         `json:"payment_method" gorm:"type:varchar(30)"`
	Status         string         `json:"status" gorm:"type:varchar(20);default:'draft'"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}

// Budget is a treatment quote
type Budget struct {
	ID             string         `json:"id" gorm:"type:uuid;primaryKey"`
	OrganizationID string         `json:"organization_id" gorm:"type:uuid;index;not null"`
	PatientID      string         `json:"patient_id" gorm:"type:uuid;index;not null"`
	DoctorID       string         `json:"doctor_id" gorm:"type:uuid;index"`
	Title          string         `json:"title" gorm:"type:varchar(150)"`
	Total          float64        `json:"total" gorm:"type:double precision"`
	ValidUntil     *time.Time     `json:"valid_until,omitempty"`
	Status         string         `json:"status" gorm:"type:varchar(20);default:'draft'"`
	Notes          string         `json:"notes" gorm:"type:text"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}

// Expense paid by the practice
type Expense struct {
	ID             string         `json:"id" gorm:"type:uuid;primaryKey"`
	OrganizationID string         `json:"organization_id" gorm:"type:uuid;index;not null"`
	Category       string         `json:"category" gorm:"type:varchar(60)"`
	Description    string         `json:"description" gorm:"type:text"`
	Amount         float64        `json:"amount" gorm:"type:double precision"`
	SpentAt        time.Time      `json:"spent_at"`
	PaymentMethod  string         `json:"payment_method" gorm:"type:varchar(30)"`
	Supplier       string         `json:"supplier" gorm:"type:varchar(150)"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}
