package database_test

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"erp-backend/internal/auth"
	"erp-backend/internal/database"
	"erp-backend/internal/inventory"
	"erp-backend/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	itemA = "0b6d1c62-5d0e-4a53-a2a8-0d6e1b8f0a01"
	itemB = "7f3e2a10-9c4b-4d61-8f35-2a9d7c1e5b02"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	require.NoError(t, err)
	return gormDB, mock
}

var guardedUpdate = `UPDATE "inventory_items" SET .*WHERE .*id = \$\d+ AND total_stock \+ \$\d+ >= 0 AND available_stock \+ \$\d+ >= 0 AND available_stock \+ \$\d+ <= total_stock \+ \$\d+.*"inventory_items"\."deleted_at" IS NULL`

func TestApplyDelta_GuardRejects(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := database.NewRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(guardedUpdate).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	var applied bool
	err := repo.WithinTx(context.Background(), func(tx inventory.Tx) error {
		var err error
		applied, err = tx.ApplyDelta(itemA, inventory.StockDelta{Total: -5, Available: -5})
		return err
	})
	require.NoError(t, err)
	assert.False(t, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyDelta_Applied(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := database.NewRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(guardedUpdate).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	var applied bool
	err := repo.WithinTx(context.Background(), func(tx inventory.Tx) error {
		var err error
		applied, err = tx.ApplyDelta(itemA, inventory.StockDelta{Available: -2})
		return err
	})
	require.NoError(t, err)
	assert.True(t, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := database.NewRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(guardedUpdate).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	rejected := &inventory.InsufficientStockError{ItemID: itemB, Requested: 9, Available: 1}
	err := repo.WithinTx(context.Background(), func(tx inventory.Tx) error {
		if _, err := tx.ApplyDelta(itemA, inventory.StockDelta{Total: -1, Available: -1}); err != nil {
			return err
		}
		return rejected
	})
	assert.ErrorIs(t, err, inventory.ErrInsufficientStock)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLockItems_SortedForUpdate(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := database.NewRepository(gormDB)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "unit", "minimum", "total_stock", "available_stock", "created_at", "updated_at"}).
		AddRow(itemA, "Drill", "pcs", 2, 10, 8, now, now).
		AddRow(itemB, "Cable", "m", 0, 0, 0, now, now)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "inventory_items" WHERE id IN \(\$1,\$2\) .*ORDER BY id FOR UPDATE`).
		WithArgs(itemA, itemB).
		WillReturnRows(rows)
	mock.ExpectCommit()

	var items []models.InventoryItem
	err := repo.WithinTx(context.Background(), func(tx inventory.Tx) error {
		var err error
		// unsorted, duplicated and malformed ids
		items, err = tx.LockItems([]string{itemB, itemA, itemB, "not-a-uuid"})
		return err
	})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 8, items[0].AvailableStock)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendLedger_AssignsSequence(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := database.NewRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "stock_ledger"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(41).AddRow(42))
	mock.ExpectCommit()

	date := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	entries := []models.StockLedgerEntry{
		{ItemID: itemA, Type: models.LedgerStockIn, Quantity: 10, Date: date, ReferenceID: itemB},
		{ItemID: itemB, Type: models.LedgerStockIn, Quantity: 3, Date: date, ReferenceID: itemB},
	}
	err := repo.WithinTx(context.Background(), func(tx inventory.Tx) error {
		return tx.AppendLedger(entries)
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(41), entries[0].ID)
	assert.Equal(t, uint64(42), entries[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountByStatus_UsesGeneratedCase(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := database.NewRepository(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT CASE WHEN total_stock <= 0 THEN 'OutOfStock' WHEN total_stock <= minimum THEN 'LowStock' ELSE 'Available' END AS status, COUNT(*) AS n FROM "inventory_items"`)).
		WillReturnRows(sqlmock.NewRows([]string{"status", "n"}).
			AddRow("OutOfStock", 2).
			AddRow("Available", 5))

	counts, err := repo.CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[inventory.StatusOutOfStock])
	assert.Equal(t, int64(5), counts[inventory.StatusAvailable])
	assert.Zero(t, counts[inventory.StatusLowStock])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindItem_MalformedIDSkipsQuery(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := database.NewRepository(gormDB)

	item, err := repo.FindItem(context.Background(), "42")
	require.NoError(t, err)
	assert.Nil(t, item)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindItem_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := database.NewRepository(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "inventory_items"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	item, err := repo.FindItem(context.Background(), itemA)
	require.NoError(t, err)
	assert.Nil(t, item)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := database.NewRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "users"`)).
		WillReturnError(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}))
	mock.ExpectRollback()

	err := repo.CreateUser(context.Background(), &models.User{
		ID:    itemA,
		Name:  "Ada",
		Email: "ada@example.com",
		Role:  models.RoleStaff,
	})
	assert.True(t, errors.Is(err, auth.ErrEmailTaken), "got %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteItem_ChecksLoansUnderItemLock(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	svc := inventory.NewService(database.NewRepository(gormDB))

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "inventory_items" WHERE id IN \(\$1\) .*FOR UPDATE`).
		WithArgs(itemA).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "total_stock", "available_stock", "created_at", "updated_at"}).
			AddRow(itemA, "Drill", 2, 2, now, now))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "loans" WHERE inventory_id = \$1 AND status <> \$2`).
		WithArgs(itemA, string(models.LoanStatusReturned)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(`UPDATE "inventory_items" SET "deleted_at"=\$1 WHERE id = \$2 AND "inventory_items"\."deleted_at" IS NULL`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, svc.DeleteItem(context.Background(), itemA))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteItem_OpenLoanRollsBack(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	svc := inventory.NewService(database.NewRepository(gormDB))

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "inventory_items" WHERE id IN \(\$1\) .*FOR UPDATE`).
		WithArgs(itemA).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "total_stock", "available_stock", "created_at", "updated_at"}).
			AddRow(itemA, "Drill", 2, 1, now, now))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "loans"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	err := svc.DeleteItem(context.Background(), itemA)
	assert.ErrorIs(t, err, inventory.ErrInvalidState)
	assert.NoError(t, mock.ExpectationsWereMet())
}
