package inventory

import (
	"context"
	"fmt"

	"erp-backend/internal/models"

	"go.uber.org/zap"
)

// Replay folds ledger entries into the totals they imply.
func Replay(entries []models.StockLedgerEntry) (total, available int) {
	for _, e := range entries {
		switch e.Type {
		case models.LedgerStockIn, models.LedgerAdjustmentIn:
			total += e.Quantity
			available += e.Quantity
		case models.LedgerStockOut, models.LedgerAdjustmentOut:
			total -= e.Quantity
			available -= e.Quantity
		case models.LedgerLoan:
			available -= e.Quantity
		case models.LedgerReturn:
			available += e.Quantity
		}
	}
	return total, available
}

type Balance struct {
	ItemID          string `json:"item_id"`
	TotalStock      int    `json:"total_stock"`
	AvailableStock  int    `json:"available_stock"`
	LedgerTotal     int    `json:"ledger_total"`
	LedgerAvailable int    `json:"ledger_available"`
	Entries         int    `json:"entries"`
	Consistent      bool   `json:"consistent"`
}

// VerifyBalance replays the item's ledger and compares it to the stored
// totals. Writers to the item are blocked while the check runs.
func (s *Service) VerifyBalance(ctx context.Context, itemID string) (*Balance, error) {
	var b *Balance
	err := s.repo.WithinTx(ctx, func(tx Tx) error {
		item, err := tx.ShareLockItem(itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return &NotFoundError{Entity: "inventory item", ID: itemID}
		}
		entries, err := tx.Ledger(LedgerFilter{ItemID: itemID})
		if err != nil {
			return err
		}
		total, avail := Replay(entries)
		b = &Balance{
			ItemID:          itemID,
			TotalStock:      item.TotalStock,
			AvailableStock:  item.AvailableStock,
			LedgerTotal:     total,
			LedgerAvailable: avail,
			Entries:         len(entries),
			Consistent:      total == item.TotalStock && avail == item.AvailableStock,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !b.Consistent {
		s.log.Error("ledger out of balance",
			zap.String("item_id", itemID),
			zap.Int("total_stock", b.TotalStock),
			zap.Int("ledger_total", b.LedgerTotal),
			zap.Int("available_stock", b.AvailableStock),
			zap.Int("ledger_available", b.LedgerAvailable))
	}
	return b, nil
}

// LedgerForItem returns the item's history in date order. History of
// deleted items stays readable.
func (s *Service) LedgerForItem(ctx context.Context, itemID string, r DateRange) ([]models.StockLedgerEntry, error) {
	if err := checkRange(r); err != nil {
		return nil, err
	}
	entries, err := s.repo.Ledger(ctx, LedgerFilter{ItemID: itemID, Range: r})
	if err != nil {
		return nil, fmt.Errorf("ledger for item: %w", err)
	}
	return entries, nil
}

func (s *Service) LedgerForRange(ctx context.Context, r DateRange, types ...models.LedgerType) ([]models.StockLedgerEntry, error) {
	if err := checkRange(r); err != nil {
		return nil, err
	}
	entries, err := s.repo.Ledger(ctx, LedgerFilter{Types: types, Range: r})
	if err != nil {
		return nil, fmt.Errorf("ledger for range: %w", err)
	}
	return entries, nil
}

func checkRange(r DateRange) error {
	if !r.From.IsZero() && !r.To.IsZero() && r.To.Before(r.From) {
		return invalidField("to", "must not be before from")
	}
	return nil
}
