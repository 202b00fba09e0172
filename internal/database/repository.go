package database

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"erp-backend/internal/audit"
	"erp-backend/internal/auth"
	"erp-backend/internal/inventory"
	"erp-backend/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

var statusExpr = inventory.StatusCaseSQL("total_stock", "minimum")

// Repository is the Postgres store behind the inventory service, auth and audit.
type Repository struct {
	db *gorm.DB
}

var (
	_ inventory.Repository = (*Repository)(nil)
	_ auth.UserStore       = (*Repository)(nil)
	_ audit.Store          = (*Repository)(nil)
)

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithinTx(ctx context.Context, fn func(tx inventory.Tx) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTx{db: tx})
	})
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// validID filters ids that Postgres would reject as uuid input.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (r *Repository) CreateItem(ctx context.Context, item *models.InventoryItem) error {
	item.TotalStock, item.AvailableStock = 0, 0
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *Repository) UpdateItem(ctx context.Context, item *models.InventoryItem) error {
	return r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("id = ?", item.ID).
		Updates(map[string]any{
			"name":        item.Name,
			"code":        item.Code,
			"unit":        item.Unit,
			"description": item.Description,
			"minimum":     item.Minimum,
			"photo":       item.Photo,
			"updated_at":  time.Now(),
		}).Error
}

func (r *Repository) FindItem(ctx context.Context, id string) (*models.InventoryItem, error) {
	if !validID(id) {
		return nil, nil
	}
	var item models.InventoryItem
	err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *Repository) ListItems(ctx context.Context, f inventory.ItemFilter) ([]models.InventoryItem, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.InventoryItem{})
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("name ILIKE ? OR code ILIKE ?", like, like)
	}
	if f.Status != "" {
		q = q.Where(statusExpr+" = ?", string(f.Status))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count items: %w", err)
	}
	var items []models.InventoryItem
	p := f.Page.Normalize()
	err := q.Order("name, id").Offset(p.Offset()).Limit(p.Limit).Find(&items).Error
	return items, total, err
}

func (r *Repository) CountByStatus(ctx context.Context) (map[inventory.Status]int64, error) {
	var rows []struct {
		Status string
		N      int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Select(statusExpr + " AS status, COUNT(*) AS n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[inventory.Status]int64, len(rows))
	for _, row := range rows {
		out[inventory.Status(row.Status)] = row.N
	}
	return out, nil
}

func ledgerQuery(db *gorm.DB, f inventory.LedgerFilter) *gorm.DB {
	q := db.Model(&models.StockLedgerEntry{})
	if f.ItemID != "" {
		q = q.Where("item_id = ?", f.ItemID)
	}
	if len(f.Types) > 0 {
		q = q.Where("type IN ?", f.Types)
	}
	return dateRange(q, "date", f.Range).Order("date, id")
}

func dateRange(q *gorm.DB, column string, r inventory.DateRange) *gorm.DB {
	if !r.From.IsZero() {
		q = q.Where(column+" >= ?", r.From)
	}
	if !r.To.IsZero() {
		q = q.Where(column+" < ?", r.To)
	}
	return q
}

func (r *Repository) Ledger(ctx context.Context, f inventory.LedgerFilter) ([]models.StockLedgerEntry, error) {
	if f.ItemID != "" && !validID(f.ItemID) {
		return []models.StockLedgerEntry{}, nil
	}
	entries := []models.StockLedgerEntry{}
	err := ledgerQuery(r.db.WithContext(ctx), f).Find(&entries).Error
	return entries, err
}

func (r *Repository) FindStockIn(ctx context.Context, id string) (*models.StockIn, error) {
	if !validID(id) {
		return nil, nil
	}
	var h models.StockIn
	err := r.db.WithContext(ctx).Preload("Items").First(&h, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *Repository) ListStockIns(ctx context.Context, p inventory.Page, rng inventory.DateRange) ([]models.StockIn, int64, error) {
	q := dateRange(r.db.WithContext(ctx).Model(&models.StockIn{}), "date", rng)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.StockIn
	p = p.Normalize()
	err := q.Preload("Items").Order("date DESC, id").Offset(p.Offset()).Limit(p.Limit).Find(&rows).Error
	return rows, total, err
}

func (r *Repository) FindStockOut(ctx context.Context, id string) (*models.StockOut, error) {
	if !validID(id) {
		return nil, nil
	}
	var h models.StockOut
	err := r.db.WithContext(ctx).Preload("Items").First(&h, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *Repository) ListStockOuts(ctx context.Context, p inventory.Page, rng inventory.DateRange) ([]models.StockOut, int64, error) {
	q := dateRange(r.db.WithContext(ctx).Model(&models.StockOut{}), "date", rng)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.StockOut
	p = p.Normalize()
	err := q.Preload("Items").Order("date DESC, id").Offset(p.Offset()).Limit(p.Limit).Find(&rows).Error
	return rows, total, err
}

func (r *Repository) FindLoan(ctx context.Context, id string) (*models.Loan, error) {
	if !validID(id) {
		return nil, nil
	}
	var l models.Loan
	err := r.db.WithContext(ctx).First(&l, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *Repository) ListLoans(ctx context.Context, f inventory.LoanFilter) ([]models.Loan, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Loan{})
	if f.InventoryID != "" {
		if !validID(f.InventoryID) {
			return []models.Loan{}, 0, nil
		}
		q = q.Where("inventory_id = ?", f.InventoryID)
	}
	if f.BorrowerID != "" {
		q = q.Where("borrower_id = ?", f.BorrowerID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.OpenOnly {
		q = q.Where("status <> ?", models.LoanStatusReturned)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.Loan
	p := f.Page.Normalize()
	err := q.Order("request_date DESC, id").Offset(p.Offset()).Limit(p.Limit).Find(&rows).Error
	return rows, total, err
}

func (r *Repository) ListStockCounts(ctx context.Context, itemID string, p inventory.Page) ([]models.StockCount, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.StockCount{})
	if itemID != "" {
		if !validID(itemID) {
			return []models.StockCount{}, 0, nil
		}
		q = q.Where("item_id = ?", itemID)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.StockCount
	p = p.Normalize()
	err := q.Order("date DESC, id").Offset(p.Offset()).Limit(p.Limit).Find(&rows).Error
	return rows, total, err
}

// sortedUnique returns ids in lock order.
func sortedUnique(ids []string) []string {
	out := append([]string(nil), ids...)
	sort.Strings(out)
	n := 0
	for i, id := range out {
		if i > 0 && out[n-1] == id {
			continue
		}
		out[n] = id
		n++
	}
	return out[:n]
}
