package models

import "time"

// StockIn: goods received from a supplier
type StockIn struct {
	ID              string        `gorm:"type:uuid;primaryKey" json:"id"`
	ReferenceNumber string        `gorm:"size:100;uniqueIndex;not null" json:"reference_number"`
	SupplierID      *string       `gorm:"type:uuid;index" json:"supplier_id"`
	Date            time.Time     `gorm:"index;not null" json:"date"`
	Note            string        `gorm:"size:255" json:"note"`
	Photo           string        `gorm:"size:255" json:"photo"`
	TotalPrice      int64         `gorm:"not null;default:0" json:"total_price"`
	CreatedBy       string        `gorm:"size:64" json:"created_by"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
	Items           []StockInItem `gorm:"foreignKey:StockInID;constraint:OnDelete:RESTRICT" json:"items"`
}

type StockInItem struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	StockInID string    `gorm:"type:uuid;index;not null" json:"stock_in_id"`
	ItemID    string    `gorm:"type:uuid;index;not null" json:"item_id"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	UnitPrice int64     `gorm:"not null;default:0" json:"unit_price"`
	CreatedAt time.Time `json:"created_at"`
}
