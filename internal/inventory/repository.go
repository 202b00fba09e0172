package inventory

import (
	"context"
	"time"

	"erp-backend/internal/models"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type Page struct {
	Page  int
	Limit int
}

// Normalize clamps the page into the accepted window.
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	return p
}

func (p Page) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Limit
}

// DateRange is half-open: From <= date < To. Zero bounds are open.
type DateRange struct {
	From time.Time
	To   time.Time
}

func (r DateRange) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && !t.Before(r.To) {
		return false
	}
	return true
}

type ItemFilter struct {
	Search string // matches name or code, case-insensitive
	Status Status
	Page   Page
}

type LedgerFilter struct {
	ItemID string
	Types  []models.LedgerType
	Range  DateRange
}

type LoanFilter struct {
	InventoryID string
	BorrowerID  string
	Status      models.LoanStatus
	OpenOnly    bool // LOANED or PARTIAL_RETURNED
	Page        Page
}

// StockDelta is a signed change applied to an item's totals.
type StockDelta struct {
	Total     int
	Available int
}

type PhotoKind string

const (
	PhotoItem     PhotoKind = "inventory_item"
	PhotoStockIn  PhotoKind = "stock_in"
	PhotoStockOut PhotoKind = "stock_out"
	PhotoLoan     PhotoKind = "loan"
)

// Repository is the persistence port of the service. Reads never see
// soft-deleted items; every write that touches stock goes through WithinTx.
type Repository interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error

	CreateItem(ctx context.Context, item *models.InventoryItem) error
	// UpdateItem persists descriptive columns only, never the totals.
	UpdateItem(ctx context.Context, item *models.InventoryItem) error
	// FindItem returns nil, nil when the item is absent or deleted.
	FindItem(ctx context.Context, id string) (*models.InventoryItem, error)
	ListItems(ctx context.Context, f ItemFilter) ([]models.InventoryItem, int64, error)
	CountByStatus(ctx context.Context) (map[Status]int64, error)

	// Ledger returns entries ordered by date, then insertion order.
	Ledger(ctx context.Context, f LedgerFilter) ([]models.StockLedgerEntry, error)

	FindStockIn(ctx context.Context, id string) (*models.StockIn, error)
	ListStockIns(ctx context.Context, p Page, r DateRange) ([]models.StockIn, int64, error)
	FindStockOut(ctx context.Context, id string) (*models.StockOut, error)
	ListStockOuts(ctx context.Context, p Page, r DateRange) ([]models.StockOut, int64, error)
	FindLoan(ctx context.Context, id string) (*models.Loan, error)
	ListLoans(ctx context.Context, f LoanFilter) ([]models.Loan, int64, error)
	ListStockCounts(ctx context.Context, itemID string, p Page) ([]models.StockCount, int64, error)
}

// Tx is bound to one transaction and to the context WithinTx was called with.
type Tx interface {
	// LockItems takes exclusive row locks in ascending id order and returns
	// the active items among ids. Missing ids are simply absent from the result.
	LockItems(ids []string) ([]models.InventoryItem, error)
	// ShareLockItem blocks writers to the item until the transaction ends.
	ShareLockItem(id string) (*models.InventoryItem, error)
	LockLoan(id string) (*models.Loan, error)
	// CountOpenLoans counts LOANED and PARTIAL_RETURNED loans of the item.
	CountOpenLoans(itemID string) (int64, error)

	// ApplyDelta updates both totals in one statement and only if the
	// result keeps 0 <= available <= total. false means nothing was written.
	ApplyDelta(itemID string, d StockDelta) (bool, error)
	AppendLedger(entries []models.StockLedgerEntry) error
	Ledger(f LedgerFilter) ([]models.StockLedgerEntry, error)

	CreateStockIn(h *models.StockIn) error
	CreateStockOut(h *models.StockOut) error
	CreateLoan(l *models.Loan) error
	SaveLoanProgress(l *models.Loan) error
	CreateStockCount(c *models.StockCount) error
	// SoftDeleteItem stamps deleted_at. false means the item was already gone.
	SoftDeleteItem(id string) (bool, error)

	// SetPhoto replaces the photo reference and returns the previous one.
	SetPhoto(kind PhotoKind, id, photo string) (previous string, found bool, err error)
}
