package models

import "time"

type LedgerType string

const (
	LedgerStockIn       LedgerType = "STOCK_IN"
	LedgerStockOut      LedgerType = "STOCK_OUT"
	LedgerLoan          LedgerType = "LOAN"
	LedgerReturn        LedgerType = "RETURN"
	LedgerAdjustmentIn  LedgerType = "ADJUSTMENT_IN"
	LedgerAdjustmentOut LedgerType = "ADJUSTMENT_OUT"
)

// StockLedgerEntry: one immutable stock movement. Rows are inserted, never updated.
// ID is a database sequence and doubles as insertion order.
type StockLedgerEntry struct {
	ID          uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ItemID      string     `gorm:"type:uuid;index:idx_ledger_item_date,priority:1;not null" json:"item_id"`
	Type        LedgerType `gorm:"size:20;index;not null" json:"type"`
	Quantity    int        `gorm:"not null" json:"quantity"` // always > 0, direction comes from Type
	Date        time.Time  `gorm:"index:idx_ledger_item_date,priority:2;not null" json:"date"`
	ReferenceID string     `gorm:"type:uuid;index;not null" json:"reference_id"`
	Note        string     `gorm:"size:255" json:"note"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (StockLedgerEntry) TableName() string { return "stock_ledger" }
