package models

import "time"

type LoanStatus string

const (
	LoanStatusLoaned          LoanStatus = "LOANED"
	LoanStatusPartialReturned LoanStatus = "PARTIAL_RETURNED"
	LoanStatusReturned        LoanStatus = "RETURNED"
)

// Loan: goods borrowed, not consumed. Returns restore available stock.
type Loan struct {
	ID               string     `gorm:"type:uuid;primaryKey" json:"id"`
	InventoryID      string     `gorm:"type:uuid;index;not null" json:"inventory_id"`
	BorrowerID       string     `gorm:"size:64;index;not null" json:"borrower_id"`
	ProjectID        *string    `gorm:"type:uuid;index" json:"project_id"`
	RequestQuantity  int        `gorm:"not null" json:"request_quantity"`
	ReturnedQuantity int        `gorm:"not null;default:0" json:"returned_quantity"`
	Status           LoanStatus `gorm:"size:20;index;not null" json:"status"`
	RequestDate      time.Time  `gorm:"index;not null" json:"request_date"`
	ReturnDate       *time.Time `json:"return_date"`
	Note             string     `gorm:"size:255" json:"note"`
	Photo            string     `gorm:"size:255" json:"photo"`
	CreatedBy        string     `gorm:"size:64" json:"created_by"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Remaining returns the quantity still out on loan.
func (l Loan) Remaining() int {
	return l.RequestQuantity - l.ReturnedQuantity
}
