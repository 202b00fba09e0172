package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"erp-backend/internal/inventory"
	"erp-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedItem(t *testing.T, s *Store, id string, total, avail int) {
	t.Helper()
	require.NoError(t, s.CreateItem(context.Background(), &models.InventoryItem{ID: id, Name: id}))
	require.NoError(t, s.WithinTx(context.Background(), func(tx inventory.Tx) error {
		_, err := tx.ApplyDelta(id, inventory.StockDelta{Total: total, Available: avail})
		return err
	}))
}

func TestWithinTx_RollbackDiscardsWrites(t *testing.T) {
	s := New()
	seedItem(t, s, "a", 10, 10)

	boom := errors.New("boom")
	err := s.WithinTx(context.Background(), func(tx inventory.Tx) error {
		ok, err := tx.ApplyDelta("a", inventory.StockDelta{Total: -4, Available: -4})
		require.NoError(t, err)
		require.True(t, ok)
		require.NoError(t, tx.AppendLedger([]models.StockLedgerEntry{{ItemID: "a", Type: models.LedgerStockOut, Quantity: 4}}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	item, err := s.FindItem(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, 10, item.TotalStock)
	assert.Equal(t, 10, item.AvailableStock)

	entries, err := s.Ledger(context.Background(), inventory.LedgerFilter{ItemID: "a"})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestApplyDelta_Guard(t *testing.T) {
	s := New()
	seedItem(t, s, "a", 5, 3)

	cases := []struct {
		name string
		d    inventory.StockDelta
		ok   bool
	}{
		{"available below zero", inventory.StockDelta{Available: -4}, false},
		{"available above total", inventory.StockDelta{Available: 3}, false},
		{"total below available", inventory.StockDelta{Total: -3}, false},
		{"both down", inventory.StockDelta{Total: -3, Available: -3}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := s.WithinTx(context.Background(), func(tx inventory.Tx) error {
				ok, err := tx.ApplyDelta("a", tc.d)
				assert.Equal(t, tc.ok, ok)
				return err
			})
			require.NoError(t, err)
		})
	}

	item, _ := s.FindItem(context.Background(), "a")
	assert.Equal(t, 2, item.TotalStock)
	assert.Equal(t, 0, item.AvailableStock)
}

func TestSoftDeletedItemIsInvisible(t *testing.T) {
	s := New()
	seedItem(t, s, "a", 1, 1)

	require.NoError(t, s.WithinTx(context.Background(), func(tx inventory.Tx) error {
		ok, err := tx.SoftDeleteItem("a")
		require.True(t, ok)
		return err
	}))

	item, err := s.FindItem(context.Background(), "a")
	require.NoError(t, err)
	assert.Nil(t, item)

	_ = s.WithinTx(context.Background(), func(tx inventory.Tx) error {
		items, err := tx.LockItems([]string{"a"})
		assert.NoError(t, err)
		assert.Empty(t, items)
		ok, err := tx.ApplyDelta("a", inventory.StockDelta{Total: 1, Available: 1})
		assert.NoError(t, err)
		assert.False(t, ok)
		return nil
	})

	counts, err := s.CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestCountOpenLoans_IgnoresReturned(t *testing.T) {
	s := New()
	seedItem(t, s, "a", 5, 5)

	err := s.WithinTx(context.Background(), func(tx inventory.Tx) error {
		for i, st := range []models.LoanStatus{models.LoanStatusLoaned, models.LoanStatusPartialReturned, models.LoanStatusReturned} {
			l := &models.Loan{ID: fmt.Sprintf("l%d", i), InventoryID: "a", RequestQuantity: 1, Status: st}
			if err := tx.CreateLoan(l); err != nil {
				return err
			}
		}
		n, err := tx.CountOpenLoans("a")
		assert.Equal(t, int64(2), n)
		return err
	})
	require.NoError(t, err)
}
