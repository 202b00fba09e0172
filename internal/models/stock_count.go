package models

import "time"

// StockCount: a physical count of one item. The difference against the
// recorded total is posted to the ledger as an adjustment.
type StockCount struct {
	ID            string    `gorm:"type:uuid;primaryKey" json:"id"`
	ItemID        string    `gorm:"type:uuid;index;not null" json:"item_id"`
	Date          time.Time `gorm:"index;not null" json:"date"` // count date
	Counted       int       `gorm:"not null" json:"counted"`
	PreviousTotal int       `gorm:"not null" json:"previous_total"`
	Note          string    `gorm:"size:255" json:"note"`
	CreatedBy     string    `gorm:"size:64" json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
}

// Delta is the signed correction posted for this count.
func (c StockCount) Delta() int {
	return c.Counted - c.PreviousTotal
}
