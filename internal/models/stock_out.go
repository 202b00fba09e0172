package models

import "time"

// StockOut: goods issued to a project or consumer
type StockOut struct {
	ID         string         `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID  *string        `gorm:"type:uuid;index" json:"project_id"`
	Date       time.Time      `gorm:"index;not null" json:"date"`
	Note       string         `gorm:"size:255" json:"note"`
	Photo      string         `gorm:"size:255" json:"photo"`
	TotalPrice int64          `gorm:"not null;default:0" json:"total_price"`
	CreatedBy  string         `gorm:"size:64" json:"created_by"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	Items      []StockOutItem `gorm:"foreignKey:StockOutID;constraint:OnDelete:RESTRICT" json:"items"`
}

type StockOutItem struct {
	ID         string    `gorm:"type:uuid;primaryKey" json:"id"`
	StockOutID string    `gorm:"type:uuid;index;not null" json:"stock_out_id"`
	ItemID     string    `gorm:"type:uuid;index;not null" json:"item_id"`
	Quantity   int       `gorm:"not null" json:"quantity"`
	UnitPrice  int64     `gorm:"not null;default:0" json:"unit_price"`
	CreatedAt  time.Time `json:"created_at"`
}
