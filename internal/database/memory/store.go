// Package memory is an in-process store for development and tests. A
// transaction works on a copy of the state that replaces the live state
// only when the callback succeeds.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"erp-backend/internal/audit"
	"erp-backend/internal/auth"
	"erp-backend/internal/inventory"
	"erp-backend/internal/models"
)

type state struct {
	items     map[string]models.InventoryItem
	ledger    []models.StockLedgerEntry
	stockIns  map[string]models.StockIn
	stockOuts map[string]models.StockOut
	loans     map[string]models.Loan
	counts    map[string]models.StockCount
	users     map[string]models.User
	auditLogs []models.AuditLog
	ledgerSeq uint64
	auditSeq  uint
}

func newState() *state {
	return &state{
		items:     map[string]models.InventoryItem{},
		stockIns:  map[string]models.StockIn{},
		stockOuts: map[string]models.StockOut{},
		loans:     map[string]models.Loan{},
		counts:    map[string]models.StockCount{},
		users:     map[string]models.User{},
	}
}

func cloneMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// clone copies everything a transaction may write. Header line slices are
// never mutated in place, so sharing them is safe.
func (s *state) clone() *state {
	return &state{
		items:     cloneMap(s.items),
		ledger:    append([]models.StockLedgerEntry(nil), s.ledger...),
		stockIns:  cloneMap(s.stockIns),
		stockOuts: cloneMap(s.stockOuts),
		loans:     cloneMap(s.loans),
		counts:    cloneMap(s.counts),
		users:     cloneMap(s.users),
		auditLogs: append([]models.AuditLog(nil), s.auditLogs...),
		ledgerSeq: s.ledgerSeq,
		auditSeq:  s.auditSeq,
	}
}

type Store struct {
	mu  sync.Mutex
	st  *state
	now func() time.Time
}

var (
	_ inventory.Repository = (*Store)(nil)
	_ auth.UserStore       = (*Store)(nil)
	_ audit.Store          = (*Store)(nil)
)

func New() *Store {
	return &Store{st: newState(), now: time.Now}
}

// WithinTx serializes transactions. fn sees its own writes; nothing is
// visible to others unless fn returns nil.
func (s *Store) WithinTx(ctx context.Context, fn func(tx inventory.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	if err := fn(&tx{st: work, now: s.now}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.st = work
	return nil
}

func active(it models.InventoryItem) bool { return !it.DeletedAt.Valid }

func (s *Store) CreateItem(_ context.Context, item *models.InventoryItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	item.CreatedAt, item.UpdatedAt = now, now
	item.TotalStock, item.AvailableStock = 0, 0
	s.st.items[item.ID] = *item
	return nil
}

func (s *Store) UpdateItem(_ context.Context, item *models.InventoryItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.st.items[item.ID]
	if !ok || !active(cur) {
		return nil
	}
	cur.Name = item.Name
	cur.Code = item.Code
	cur.Unit = item.Unit
	cur.Description = item.Description
	cur.Minimum = item.Minimum
	cur.Photo = item.Photo
	cur.UpdatedAt = s.now()
	s.st.items[item.ID] = cur
	return nil
}

func (s *Store) FindItem(_ context.Context, id string) (*models.InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.st.items[id]
	if !ok || !active(it) {
		return nil, nil
	}
	return &it, nil
}

func (s *Store) ListItems(_ context.Context, f inventory.ItemFilter) ([]models.InventoryItem, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	search := strings.ToLower(f.Search)
	var rows []models.InventoryItem
	for _, it := range s.st.items {
		if !active(it) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(it.Name), search) && !strings.Contains(strings.ToLower(it.Code), search) {
			continue
		}
		if f.Status != "" && inventory.StatusOf(it.TotalStock, it.AvailableStock, it.Minimum) != f.Status {
			continue
		}
		rows = append(rows, it)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Name != rows[j].Name {
			return rows[i].Name < rows[j].Name
		}
		return rows[i].ID < rows[j].ID
	})
	return paginate(rows, f.Page), int64(len(rows)), nil
}

func (s *Store) CountByStatus(_ context.Context) (map[inventory.Status]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[inventory.Status]int64{}
	for _, it := range s.st.items {
		if active(it) {
			out[inventory.StatusOf(it.TotalStock, it.AvailableStock, it.Minimum)]++
		}
	}
	return out, nil
}

func (s *Store) Ledger(_ context.Context, f inventory.LedgerFilter) ([]models.StockLedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filterLedger(s.st.ledger, f), nil
}

func (s *Store) FindStockIn(_ context.Context, id string) (*models.StockIn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.st.stockIns[id]
	if !ok {
		return nil, nil
	}
	return &h, nil
}

func (s *Store) ListStockIns(_ context.Context, p inventory.Page, r inventory.DateRange) ([]models.StockIn, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var rows []models.StockIn
	for _, h := range s.st.stockIns {
		if r.Contains(h.Date) {
			rows = append(rows, h)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return newerFirst(rows[i].Date, rows[j].Date, rows[i].ID, rows[j].ID) })
	return paginate(rows, p), int64(len(rows)), nil
}

func (s *Store) FindStockOut(_ context.Context, id string) (*models.StockOut, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.st.stockOuts[id]
	if !ok {
		return nil, nil
	}
	return &h, nil
}

func (s *Store) ListStockOuts(_ context.Context, p inventory.Page, r inventory.DateRange) ([]models.StockOut, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var rows []models.StockOut
	for _, h := range s.st.stockOuts {
		if r.Contains(h.Date) {
			rows = append(rows, h)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return newerFirst(rows[i].Date, rows[j].Date, rows[i].ID, rows[j].ID) })
	return paginate(rows, p), int64(len(rows)), nil
}

func (s *Store) FindLoan(_ context.Context, id string) (*models.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.st.loans[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (s *Store) ListLoans(_ context.Context, f inventory.LoanFilter) ([]models.Loan, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var rows []models.Loan
	for _, l := range s.st.loans {
		switch {
		case f.InventoryID != "" && l.InventoryID != f.InventoryID:
		case f.BorrowerID != "" && l.BorrowerID != f.BorrowerID:
		case f.Status != "" && l.Status != f.Status:
		case f.OpenOnly && l.Status == models.LoanStatusReturned:
		default:
			rows = append(rows, l)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		return newerFirst(rows[i].RequestDate, rows[j].RequestDate, rows[i].ID, rows[j].ID)
	})
	return paginate(rows, f.Page), int64(len(rows)), nil
}

func (s *Store) ListStockCounts(_ context.Context, itemID string, p inventory.Page) ([]models.StockCount, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var rows []models.StockCount
	for _, c := range s.st.counts {
		if itemID == "" || c.ItemID == itemID {
			rows = append(rows, c)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return newerFirst(rows[i].Date, rows[j].Date, rows[i].ID, rows[j].ID) })
	return paginate(rows, p), int64(len(rows)), nil
}

func newerFirst(a, b time.Time, aID, bID string) bool {
	if !a.Equal(b) {
		return a.After(b)
	}
	return aID < bID
}

func paginate[T any](rows []T, p inventory.Page) []T {
	p = p.Normalize()
	off := p.Offset()
	if off >= len(rows) {
		return []T{}
	}
	end := off + p.Limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[off:end]
}

// filterLedger keeps ledger order: date, then insertion id.
func filterLedger(all []models.StockLedgerEntry, f inventory.LedgerFilter) []models.StockLedgerEntry {
	out := []models.StockLedgerEntry{}
	for _, e := range all {
		if f.ItemID != "" && e.ItemID != f.ItemID {
			continue
		}
		if len(f.Types) > 0 && !hasType(f.Types, e.Type) {
			continue
		}
		if !f.Range.Contains(e.Date) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func hasType(types []models.LedgerType, t models.LedgerType) bool {
	for _, x := range types {
		if x == t {
			return true
		}
	}
	return false
}
