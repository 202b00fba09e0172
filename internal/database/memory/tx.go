package memory

import (
	"sort"
	"time"

	"erp-backend/internal/inventory"
	"erp-backend/internal/models"

	"gorm.io/gorm"
)

// tx mutates a private copy of the state. The store mutex is held for the
// whole transaction, so locks are implicit.
type tx struct {
	st  *state
	now func() time.Time
}

var _ inventory.Tx = (*tx)(nil)

func (t *tx) LockItems(ids []string) ([]models.InventoryItem, error) {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	out := make([]models.InventoryItem, 0, len(sorted))
	for i, id := range sorted {
		if i > 0 && sorted[i-1] == id {
			continue
		}
		if it, ok := t.st.items[id]; ok && active(it) {
			out = append(out, it)
		}
	}
	return out, nil
}

func (t *tx) ShareLockItem(id string) (*models.InventoryItem, error) {
	it, ok := t.st.items[id]
	if !ok || !active(it) {
		return nil, nil
	}
	return &it, nil
}

func (t *tx) LockLoan(id string) (*models.Loan, error) {
	l, ok := t.st.loans[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (t *tx) CountOpenLoans(itemID string) (int64, error) {
	var n int64
	for _, l := range t.st.loans {
		if l.InventoryID == itemID && l.Status != models.LoanStatusReturned {
			n++
		}
	}
	return n, nil
}

func (t *tx) SoftDeleteItem(id string) (bool, error) {
	cur, ok := t.st.items[id]
	if !ok || !active(cur) {
		return false, nil
	}
	cur.DeletedAt = gorm.DeletedAt{Time: t.now(), Valid: true}
	t.st.items[id] = cur
	return true, nil
}

func (t *tx) ApplyDelta(itemID string, d inventory.StockDelta) (bool, error) {
	it, ok := t.st.items[itemID]
	if !ok || !active(it) {
		return false, nil
	}
	total := it.TotalStock + d.Total
	avail := it.AvailableStock + d.Available
	if total < 0 || avail < 0 || avail > total {
		return false, nil
	}
	it.TotalStock, it.AvailableStock = total, avail
	it.UpdatedAt = t.now()
	t.st.items[itemID] = it
	return true, nil
}

func (t *tx) AppendLedger(entries []models.StockLedgerEntry) error {
	now := t.now()
	for i := range entries {
		t.st.ledgerSeq++
		entries[i].ID = t.st.ledgerSeq
		entries[i].CreatedAt = now
		t.st.ledger = append(t.st.ledger, entries[i])
	}
	return nil
}

func (t *tx) Ledger(f inventory.LedgerFilter) ([]models.StockLedgerEntry, error) {
	return filterLedger(t.st.ledger, f), nil
}

func (t *tx) CreateStockIn(h *models.StockIn) error {
	for _, existing := range t.st.stockIns {
		if existing.ReferenceNumber == h.ReferenceNumber {
			return &inventory.ValidationError{Fields: []inventory.FieldError{
				{Field: "reference_number", Reason: "already exists"},
			}}
		}
	}
	now := t.now()
	h.CreatedAt, h.UpdatedAt = now, now
	for i := range h.Items {
		h.Items[i].CreatedAt = now
	}
	stored := *h
	stored.Items = append([]models.StockInItem(nil), h.Items...)
	t.st.stockIns[h.ID] = stored
	return nil
}

func (t *tx) CreateStockOut(h *models.StockOut) error {
	now := t.now()
	h.CreatedAt, h.UpdatedAt = now, now
	for i := range h.Items {
		h.Items[i].CreatedAt = now
	}
	stored := *h
	stored.Items = append([]models.StockOutItem(nil), h.Items...)
	t.st.stockOuts[h.ID] = stored
	return nil
}

func (t *tx) CreateLoan(l *models.Loan) error {
	now := t.now()
	l.CreatedAt, l.UpdatedAt = now, now
	t.st.loans[l.ID] = *l
	return nil
}

func (t *tx) SaveLoanProgress(l *models.Loan) error {
	cur, ok := t.st.loans[l.ID]
	if !ok {
		return nil
	}
	cur.ReturnedQuantity = l.ReturnedQuantity
	cur.Status = l.Status
	cur.ReturnDate = l.ReturnDate
	cur.UpdatedAt = t.now()
	l.UpdatedAt = cur.UpdatedAt
	t.st.loans[l.ID] = cur
	return nil
}

func (t *tx) CreateStockCount(c *models.StockCount) error {
	c.CreatedAt = t.now()
	t.st.counts[c.ID] = *c
	return nil
}

func (t *tx) SetPhoto(kind inventory.PhotoKind, id, photo string) (string, bool, error) {
	now := t.now()
	switch kind {
	case inventory.PhotoItem:
		it, ok := t.st.items[id]
		if !ok || !active(it) {
			return "", false, nil
		}
		prev := it.Photo
		it.Photo, it.UpdatedAt = photo, now
		t.st.items[id] = it
		return prev, true, nil
	case inventory.PhotoStockIn:
		h, ok := t.st.stockIns[id]
		if !ok {
			return "", false, nil
		}
		prev := h.Photo
		h.Photo, h.UpdatedAt = photo, now
		t.st.stockIns[id] = h
		return prev, true, nil
	case inventory.PhotoStockOut:
		h, ok := t.st.stockOuts[id]
		if !ok {
			return "", false, nil
		}
		prev := h.Photo
		h.Photo, h.UpdatedAt = photo, now
		t.st.stockOuts[id] = h
		return prev, true, nil
	case inventory.PhotoLoan:
		l, ok := t.st.loans[id]
		if !ok {
			return "", false, nil
		}
		prev := l.Photo
		l.Photo, l.UpdatedAt = photo, now
		t.st.loans[id] = l
		return prev, true, nil
	}
	return "", false, nil
}
