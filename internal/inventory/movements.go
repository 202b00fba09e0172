package inventory

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"erp-backend/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// lineTotals sums quantities per item. ids keeps first-appearance order so
// the first offending line is the one reported.
func lineTotals(lines []LineInput) (ids []string, need map[string]int, err error) {
	need = make(map[string]int, len(lines))
	for i, l := range lines {
		sum, seen := need[l.ItemID]
		if !seen {
			ids = append(ids, l.ItemID)
		}
		if l.Quantity < 0 || sum > math.MaxInt-l.Quantity {
			return nil, nil, invalidField(fmt.Sprintf("items[%d].quantity", i), "total for this item is out of range")
		}
		need[l.ItemID] = sum + l.Quantity
	}
	return ids, need, nil
}

// totalPrice sums quantity * unit_price over the lines in minor units.
func totalPrice(lines []LineInput) (int64, error) {
	var total int64
	for i, l := range lines {
		q := int64(l.Quantity)
		if q < 0 || l.UnitPrice < 0 || (l.UnitPrice != 0 && q > math.MaxInt64/l.UnitPrice) {
			return 0, invalidField(fmt.Sprintf("items[%d].unit_price", i), "line total is out of range")
		}
		p := q * l.UnitPrice
		if total > math.MaxInt64-p {
			return 0, invalidField(fmt.Sprintf("items[%d].unit_price", i), "document total is out of range")
		}
		total += p
	}
	return total, nil
}

// lockItems locks every id and fails with NotFound on the first missing one.
func lockItems(tx Tx, ids []string) (map[string]models.InventoryItem, error) {
	items, err := tx.LockItems(ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.InventoryItem, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, &NotFoundError{Entity: "inventory item", ID: id}
		}
	}
	return byID, nil
}

func ledgerEntry(t models.LedgerType, itemID string, qty int, date time.Time, ref, note string) models.StockLedgerEntry {
	return models.StockLedgerEntry{
		ItemID:      itemID,
		Type:        t,
		Quantity:    qty,
		Date:        date,
		ReferenceID: ref,
		Note:        note,
	}
}

// ReceiveStock records goods received from a supplier: one header, its
// lines, both totals raised per line and one STOCK_IN entry per line.
func (s *Service) ReceiveStock(ctx context.Context, in StockInInput) (*models.StockIn, error) {
	in.ReferenceNumber = strings.TrimSpace(in.ReferenceNumber)
	if err := validateInput(in); err != nil {
		return nil, s.rejected("stock_in", err)
	}
	ids, need, err := lineTotals(in.Lines)
	if err != nil {
		return nil, s.rejected("stock_in", err)
	}
	price, err := totalPrice(in.Lines)
	if err != nil {
		return nil, s.rejected("stock_in", err)
	}
	if err := s.checkPhoto(ctx, in.Photo); err != nil {
		return nil, s.rejected("stock_in", err)
	}

	header := &models.StockIn{
		ID:              uuid.NewString(),
		ReferenceNumber: in.ReferenceNumber,
		SupplierID:      in.SupplierID,
		Date:            in.Date.UTC(),
		Note:            in.Note,
		Photo:           in.Photo,
		TotalPrice:      price,
		CreatedBy:       ActorFrom(ctx).ID,
		Items:           make([]models.StockInItem, 0, len(in.Lines)),
	}
	entries := make([]models.StockLedgerEntry, 0, len(in.Lines))
	for _, l := range in.Lines {
		header.Items = append(header.Items, models.StockInItem{
			ID:        uuid.NewString(),
			StockInID: header.ID,
			ItemID:    l.ItemID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
		entries = append(entries, ledgerEntry(models.LedgerStockIn, l.ItemID, l.Quantity, header.Date, header.ID, in.Note))
	}

	err = s.repo.WithinTx(ctx, func(tx Tx) error {
		items, err := lockItems(tx, ids)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if items[id].TotalStock > math.MaxInt-need[id] {
				return invalidField("items", "stock of item "+id+" would be out of range")
			}
		}
		if err := tx.CreateStockIn(header); err != nil {
			return err
		}
		for _, id := range ids {
			ok, err := tx.ApplyDelta(id, StockDelta{Total: need[id], Available: need[id]})
			if err != nil {
				return err
			}
			if !ok {
				return &NotFoundError{Entity: "inventory item", ID: id}
			}
		}
		return tx.AppendLedger(entries)
	})
	if err != nil {
		return nil, s.rejected("stock_in", err)
	}

	s.recordMovements(entries)
	s.log.Info("stock received",
		zap.String("stock_in_id", header.ID),
		zap.String("reference_number", header.ReferenceNumber),
		zap.Int("lines", len(header.Items)))
	s.writeAudit(ctx, "stock_in", header.ID, models.AuditActionCreate,
		fmt.Sprintf("Stock in %s: %d line(s)", header.ReferenceNumber, len(header.Items)), header)
	return header, nil
}

// IssueStock consumes goods. Every line is checked against available stock
// under lock before anything is written; one short line rejects the whole
// transaction.
func (s *Service) IssueStock(ctx context.Context, in StockOutInput) (*models.StockOut, error) {
	if err := validateInput(in); err != nil {
		return nil, s.rejected("stock_out", err)
	}
	ids, need, err := lineTotals(in.Lines)
	if err != nil {
		return nil, s.rejected("stock_out", err)
	}
	price, err := totalPrice(in.Lines)
	if err != nil {
		return nil, s.rejected("stock_out", err)
	}
	if err := s.checkPhoto(ctx, in.Photo); err != nil {
		return nil, s.rejected("stock_out", err)
	}

	header := &models.StockOut{
		ID:         uuid.NewString(),
		ProjectID:  in.ProjectID,
		Date:       in.Date.UTC(),
		Note:       in.Note,
		Photo:      in.Photo,
		TotalPrice: price,
		CreatedBy:  ActorFrom(ctx).ID,
		Items:      make([]models.StockOutItem, 0, len(in.Lines)),
	}
	entries := make([]models.StockLedgerEntry, 0, len(in.Lines))
	for _, l := range in.Lines {
		header.Items = append(header.Items, models.StockOutItem{
			ID:         uuid.NewString(),
			StockOutID: header.ID,
			ItemID:     l.ItemID,
			Quantity:   l.Quantity,
			UnitPrice:  l.UnitPrice,
		})
		entries = append(entries, ledgerEntry(models.LedgerStockOut, l.ItemID, l.Quantity, header.Date, header.ID, in.Note))
	}

	err = s.repo.WithinTx(ctx, func(tx Tx) error {
		items, err := lockItems(tx, ids)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if avail := items[id].AvailableStock; need[id] > avail {
				return &InsufficientStockError{ItemID: id, Requested: need[id], Available: avail}
			}
		}
		if err := tx.CreateStockOut(header); err != nil {
			return err
		}
		for _, id := range ids {
			ok, err := tx.ApplyDelta(id, StockDelta{Total: -need[id], Available: -need[id]})
			if err != nil {
				return err
			}
			if !ok {
				return &InsufficientStockError{ItemID: id, Requested: need[id], Available: items[id].AvailableStock}
			}
		}
		return tx.AppendLedger(entries)
	})
	if err != nil {
		return nil, s.rejected("stock_out", err)
	}

	s.recordMovements(entries)
	s.log.Info("stock issued", zap.String("stock_out_id", header.ID), zap.Int("lines", len(header.Items)))
	s.writeAudit(ctx, "stock_out", header.ID, models.AuditActionCreate,
		fmt.Sprintf("Stock out: %d line(s)", len(header.Items)), header)
	return header, nil
}

// LendStock moves quantity from available to on-loan. Total is unchanged.
func (s *Service) LendStock(ctx context.Context, in LoanInput) (*models.Loan, error) {
	in.BorrowerID = strings.TrimSpace(in.BorrowerID)
	if err := validateInput(in); err != nil {
		return nil, s.rejected("loan", err)
	}
	if err := s.checkPhoto(ctx, in.Photo); err != nil {
		return nil, s.rejected("loan", err)
	}

	loan := &models.Loan{
		ID:              uuid.NewString(),
		InventoryID:     in.ItemID,
		BorrowerID:      in.BorrowerID,
		ProjectID:       in.ProjectID,
		RequestQuantity: in.Quantity,
		Status:          models.LoanStatusLoaned,
		RequestDate:     in.Date.UTC(),
		Note:            in.Note,
		Photo:           in.Photo,
		CreatedBy:       ActorFrom(ctx).ID,
	}
	entries := []models.StockLedgerEntry{
		ledgerEntry(models.LedgerLoan, in.ItemID, in.Quantity, loan.RequestDate, loan.ID, in.Note),
	}

	err := s.repo.WithinTx(ctx, func(tx Tx) error {
		items, err := lockItems(tx, []string{in.ItemID})
		if err != nil {
			return err
		}
		avail := items[in.ItemID].AvailableStock
		if in.Quantity > avail {
			return &InsufficientStockError{ItemID: in.ItemID, Requested: in.Quantity, Available: avail}
		}
		if err := tx.CreateLoan(loan); err != nil {
			return err
		}
		ok, err := tx.ApplyDelta(in.ItemID, StockDelta{Available: -in.Quantity})
		if err != nil {
			return err
		}
		if !ok {
			return &InsufficientStockError{ItemID: in.ItemID, Requested: in.Quantity, Available: avail}
		}
		return tx.AppendLedger(entries)
	})
	if err != nil {
		return nil, s.rejected("loan", err)
	}

	s.recordMovements(entries)
	s.log.Info("stock lent",
		zap.String("loan_id", loan.ID),
		zap.String("item_id", loan.InventoryID),
		zap.Int("quantity", loan.RequestQuantity))
	s.writeAudit(ctx, "loan", loan.ID, models.AuditActionCreate,
		fmt.Sprintf("Loan of %d to %s", loan.RequestQuantity, loan.BorrowerID), loan)
	return loan, nil
}

// ReturnLoan books a full or partial return. RETURNED is terminal.
func (s *Service) ReturnLoan(ctx context.Context, loanID string, in ReturnInput) (*models.Loan, error) {
	if err := validateInput(in); err != nil {
		return nil, s.rejected("return", err)
	}
	date := in.Date.UTC()

	var loan *models.Loan
	var entries []models.StockLedgerEntry
	err := s.repo.WithinTx(ctx, func(tx Tx) error {
		l, err := tx.LockLoan(loanID)
		if err != nil {
			return err
		}
		if l == nil {
			return &NotFoundError{Entity: "loan", ID: loanID}
		}
		if l.Status == models.LoanStatusReturned {
			return &InvalidStateError{Entity: "loan", ID: loanID, State: string(l.Status), Reason: "loan is already fully returned"}
		}
		if in.Quantity > l.Remaining() {
			return &InvalidStateError{
				Entity: "loan",
				ID:     loanID,
				State:  string(l.Status),
				Reason: fmt.Sprintf("return of %d exceeds outstanding %d", in.Quantity, l.Remaining()),
			}
		}

		ok, err := tx.ApplyDelta(l.InventoryID, StockDelta{Available: in.Quantity})
		if err != nil {
			return err
		}
		if !ok {
			return &NotFoundError{Entity: "inventory item", ID: l.InventoryID}
		}

		l.ReturnedQuantity += in.Quantity
		l.ReturnDate = &date
		l.Status = models.LoanStatusPartialReturned
		if l.Remaining() == 0 {
			l.Status = models.LoanStatusReturned
		}
		if err := tx.SaveLoanProgress(l); err != nil {
			return err
		}

		entries = []models.StockLedgerEntry{
			ledgerEntry(models.LedgerReturn, l.InventoryID, in.Quantity, date, l.ID, in.Note),
		}
		loan = l
		return tx.AppendLedger(entries)
	})
	if err != nil {
		return nil, s.rejected("return", err)
	}

	s.recordMovements(entries)
	s.log.Info("loan returned",
		zap.String("loan_id", loan.ID),
		zap.Int("quantity", in.Quantity),
		zap.String("status", string(loan.Status)))
	s.writeAudit(ctx, "loan", loan.ID, models.AuditActionReturn,
		fmt.Sprintf("Loan return of %d, now %s", in.Quantity, loan.Status), loan)
	return loan, nil
}

// AdjustCount reconciles a physical count. The difference to the recorded
// total is posted as ADJUSTMENT_IN or ADJUSTMENT_OUT; a matching count only
// records the count itself.
func (s *Service) AdjustCount(ctx context.Context, in CountInput) (*models.StockCount, error) {
	if err := validateInput(in); err != nil {
		return nil, s.rejected("count", err)
	}

	count := &models.StockCount{
		ID:        uuid.NewString(),
		ItemID:    in.ItemID,
		Date:      in.Date.UTC(),
		Counted:   in.Counted,
		Note:      in.Note,
		CreatedBy: ActorFrom(ctx).ID,
	}
	var entries []models.StockLedgerEntry

	err := s.repo.WithinTx(ctx, func(tx Tx) error {
		items, err := lockItems(tx, []string{in.ItemID})
		if err != nil {
			return err
		}
		item := items[in.ItemID]
		count.PreviousTotal = item.TotalStock
		delta := count.Delta()

		// on-loan units are counted as owned but cannot be written off
		if delta < 0 && -delta > item.AvailableStock {
			return &InsufficientStockError{ItemID: item.ID, Requested: -delta, Available: item.AvailableStock}
		}
		if err := tx.CreateStockCount(count); err != nil {
			return err
		}
		if delta == 0 {
			return nil
		}

		ok, err := tx.ApplyDelta(item.ID, StockDelta{Total: delta, Available: delta})
		if err != nil {
			return err
		}
		if !ok {
			return &InsufficientStockError{ItemID: item.ID, Requested: -delta, Available: item.AvailableStock}
		}
		t, qty := models.LedgerAdjustmentIn, delta
		if delta < 0 {
			t, qty = models.LedgerAdjustmentOut, -delta
		}
		entries = []models.StockLedgerEntry{ledgerEntry(t, item.ID, qty, count.Date, count.ID, in.Note)}
		return tx.AppendLedger(entries)
	})
	if err != nil {
		return nil, s.rejected("count", err)
	}

	s.recordMovements(entries)
	s.log.Info("stock counted",
		zap.String("item_id", count.ItemID),
		zap.Int("counted", count.Counted),
		zap.Int("delta", count.Delta()))
	s.writeAudit(ctx, "stock_count", count.ID, models.AuditActionAdjust,
		fmt.Sprintf("Count %d (recorded %d)", count.Counted, count.PreviousTotal), count)
	return count, nil
}
