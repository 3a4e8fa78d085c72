package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Patient of a practice
type Patient struct {
	ID             string         `json:"id" gorm:"type:uuid;primaryKey"`
	OrganizationID string         `json:"organization_id" gorm:"type:uuid;index;not null"`
	FirstName      string         `json:"first_name" gorm:"type:varchar(100);not null"`
	LastName       string         `json:"last_name" gorm:"type:varchar(100)"`
	Email          string         `json:"email" gorm:"type:varchar(150)"`
	Phone          string         `json:"phone" gorm:"type:varchar(30)"`
	BirthDate      *time.Time     `json:"birth_date,omitempty"`
	Gender         string         `json:"gender" gorm:"type:varchar(20)"`
	Address        string         `json:"address" gorm:"type:text"`
	Allergies      pq.StringArray `json:"allergies" gorm:"type:text[]"`
	Notes          string         `json:"notes" gorm:"type:text"`
	Status         string         `json:"status" gorm:"type:varchar(20);default:'active'"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}

// Appointment on the practice agenda
type Appointment struct {
	ID             string         `json:"id" gorm:"type:uuid;primaryKey"`
	OrganizationID string         `json:"organization_id" gorm:"type:uuid;index;not null"`
	PatientID      string         `json:"patient_id" gorm:"type:uuid;index"`
	DoctorID       string         `json:"doctor_id" gorm:"type:uuid;index"`
	StartsAt       time.Time      `json:"starts_at"`
	EndsAt         time.Time      `json:"ends_at"`
	Treatment      string         `json:"treatment" gorm:"type:varchar(150)"`
	Status         string         `json:"status" gorm:"type:varchar(20);default:'scheduled'"`
	Notes          string         `json:"notes" gorm:"type:text"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}

// Prescription issued by a clinician
type Prescription struct {
	ID             string         `json:"id" gorm:"type:uuid;primaryKey"`
	OrganizationID string         `json:"organization_id" gorm:"type:uuid;index;not null"`
	PatientID      string         `json:"patient_id" gorm:"type:uuid;index;not null"`
	DoctorID       string         `json:"doctor_id" gorm:"type:uuid;index"`
	Medications    pq.StringArray `json:"medications" gorm:"type:text[]"`
	Instructions   string         `json:"instructions" gorm:"type:text"`
	IssuedAt       time.Time      `json:"issued_at"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}

// LabOrder is work sent to a dental laboratory
type LabOrder struct {
	ID             string         `json:"id" gorm:"type:uuid;primaryKey"`
	OrganizationID string         `json:"organization_id" gorm:"type:uuid;index;not null"`
	PatientID      string         `json:"patient_id" gorm:"type:uuid;index;not null"`
	DoctorID       string         `json:"doctor_id" gorm:"type:uuid;index"`
	Laboratory     string         `json:"laboratory" gorm:"type:varchar(150)"`
	WorkType       string         `json:"work_type" gorm:"type:varchar(100)"`
	DueDate        *time.Time     `json:"due_date,omitempty"`
	Cost           float64        `json:"cost" gorm:"type:double precision"`
	Status         string         `json:"status" gorm:"type:varchar(20);default:'pending'"`
	Notes          string         `json:"notes" gorm:"type:text"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}
