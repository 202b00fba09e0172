package database

import (
	"errors"
	"time"

	"erp-backend/internal/inventory"
	"erp-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gormTx struct {
	db *gorm.DB
}

var _ inventory.Tx = (*gormTx)(nil)

// LockItems locks rows in ascending id order so concurrent movements over
// overlapping items cannot deadlock.
func (t *gormTx) LockItems(ids []string) ([]models.InventoryItem, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range sortedUnique(ids) {
		if validID(id) {
			valid = append(valid, id)
		}
	}
	items := []models.InventoryItem{}
	if len(valid) == 0 {
		return items, nil
	}
	err := t.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", valid).
		Order("id").
		Find(&items).Error
	return items, err
}

func (t *gormTx) ShareLockItem(id string) (*models.InventoryItem, error) {
	if !validID(id) {
		return nil, nil
	}
	var item models.InventoryItem
	err := t.db.Clauses(clause.Locking{Strength: "SHARE"}).First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (t *gormTx) LockLoan(id string) (*models.Loan, error) {
	if !validID(id) {
		return nil, nil
	}
	var l models.Loan
	err := t.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&l, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (t *gormTx) CountOpenLoans(itemID string) (int64, error) {
	var n int64
	err := t.db.Model(&models.Loan{}).
		Where("inventory_id = ? AND status <> ?", itemID, models.LoanStatusReturned).
		Count(&n).Error
	return n, err
}

func (t *gormTx) SoftDeleteItem(id string) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	res := t.db.Delete(&models.InventoryItem{}, "id = ?", id)
	return res.RowsAffected > 0, res.Error
}

// ApplyDelta is a guarded update: the bounds are part of the WHERE clause,
// so a concurrent writer can never drive a total negative or make available
// exceed total. The soft-delete scope adds deleted_at IS NULL.
func (t *gormTx) ApplyDelta(itemID string, d inventory.StockDelta) (bool, error) {
	res := t.db.Model(&models.InventoryItem{}).
		Where("id = ? AND total_stock + ? >= 0 AND available_stock + ? >= 0 AND available_stock + ? <= total_stock + ?",
			itemID, d.Total, d.Available, d.Available, d.Total).
		Updates(map[string]any{
			"total_stock":     gorm.Expr("total_stock + ?", d.Total),
			"available_stock": gorm.Expr("available_stock + ?", d.Available),
			"updated_at":      time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (t *gormTx) AppendLedger(entries []models.StockLedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return t.db.Create(&entries).Error
}

func (t *gormTx) Ledger(f inventory.LedgerFilter) ([]models.StockLedgerEntry, error) {
	entries := []models.StockLedgerEntry{}
	err := ledgerQuery(t.db, f).Find(&entries).Error
	return entries, err
}

func (t *gormTx) CreateStockIn(h *models.StockIn) error {
	err := t.db.Create(h).Error
	if isUniqueViolation(err) {
		return &inventory.ValidationError{Fields: []inventory.FieldError{
			{Field: "reference_number", Reason: "already exists"},
		}}
	}
	return err
}

func (t *gormTx) CreateStockOut(h *models.StockOut) error {
	return t.db.Create(h).Error
}

func (t *gormTx) CreateLoan(l *models.Loan) error {
	return t.db.Create(l).Error
}

func (t *gormTx) SaveLoanProgress(l *models.Loan) error {
	l.UpdatedAt = time.Now()
	return t.db.Model(&models.Loan{}).
		Where("id = ?", l.ID).
		Updates(map[string]any{
			"returned_quantity": l.ReturnedQuantity,
			"status":            l.Status,
			"return_date":       l.ReturnDate,
			"updated_at":        l.UpdatedAt,
		}).Error
}

func (t *gormTx) CreateStockCount(c *models.StockCount) error {
	return t.db.Create(c).Error
}

var photoOwners = map[inventory.PhotoKind]any{
	inventory.PhotoItem:     &models.InventoryItem{},
	inventory.PhotoStockIn:  &models.StockIn{},
	inventory.PhotoStockOut: &models.StockOut{},
	inventory.PhotoLoan:     &models.Loan{},
}

func (t *gormTx) SetPhoto(kind inventory.PhotoKind, id, photo string) (string, bool, error) {
	model, ok := photoOwners[kind]
	if !ok || !validID(id) {
		return "", false, nil
	}

	var row struct{ Photo string }
	res := t.db.Model(model).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("photo").
		Where("id = ?", id).
		Limit(1).
		Scan(&row)
	if res.Error != nil {
		return "", false, res.Error
	}
	if res.RowsAffected == 0 {
		return "", false, nil
	}

	err := t.db.Model(model).
		Where("id = ?", id).
		Updates(map[string]any{"photo": photo, "updated_at": time.Now()}).Error
	if err != nil {
		return "", false, err
	}
	return row.Photo, true, nil
}
