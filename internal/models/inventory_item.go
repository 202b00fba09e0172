package models

import (
	"time"

	"gorm.io/gorm"
)

// InventoryItem: a stock keeping unit and its running totals.
// TotalStock and AvailableStock are only written by stock movements.
type InventoryItem struct {
	ID             string         `gorm:"type:uuid;primaryKey" json:"id"`
	Name           string         `gorm:"size:150;not null" json:"name"`
	Code           string         `gorm:"size:50;index" json:"code"` // internal SKU / stock code
	Unit           string         `gorm:"size:20;not null;default:'pcs'" json:"unit"`
	Description    string         `gorm:"size:500" json:"description"`
	Minimum        int            `gorm:"not null;default:0" json:"minimum"` // reorder threshold
	TotalStock     int            `gorm:"not null;default:0" json:"total_stock"`
	AvailableStock int            `gorm:"not null;default:0" json:"available_stock"`
	Photo          string         `gorm:"size:255" json:"photo"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}
