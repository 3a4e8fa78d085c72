package model

import (
	"time"

	"gorm.io/gorm"
)

// InventoryItem is a stocked supply
type InventoryItem struct {
	ID             string         `json:"id" gorm:"type:uuid;primaryKey"`
	OrganizationID string         `json:"organization_id" gorm:"type:uuid;index;not null"`
	Name           string         `json:"name" gorm:"type:varchar(150);not null"`
	SKU            string         `json:"sku" gorm:"column:sku;type:varchar(60)"`
	Category       string         `json:"category" gorm:"type:varchar(60)"`
	Unit           string         `json:"unit" gorm:"type:varchar(20)"`
	Quantity       int64          `json:"quantity"`
	MinStock       int64          `json:"min_stock"`
	UnitCost       float64        `json:"unit_cost" gorm:"type:double precision"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}

// Lead is a prospective patient tracked by the CRM
type Lead struct {
	ID             string         `json:"id" gorm:"type:uuid;primaryKey"`
	OrganizationID string         `json:"organization_id" gorm:"type:uuid;index;not null"`
	Name           string         `json:"name" gorm:"type:varchar(150);not null"`
	Email          string         `json:"email" gorm:"type:varchar(150)"`
	Phone          string         `json:"phone" gorm:"type:varchar(30)"`
	Source         string         `json:"source" gorm:"type:varchar(40)"`
	Status         string         `json:"status" gorm:"type:varchar(20);default:'new'"`
	Notes          string         `json:"notes" gorm:"type:text"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}
