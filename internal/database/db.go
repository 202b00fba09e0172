package database

import (
	"fmt"
	"time"

	"erp-backend/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func Open(dsn string, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.New(zap.NewStdLog(log.Named("gorm")), gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

// checkConstraints back the stock invariants at the database level. AutoMigrate
// does not create table CHECKs, so they are added by hand once.
var checkConstraints = []struct {
	table, name, expr string
}{
	{"inventory_items", "chk_inventory_items_stock", "available_stock >= 0 AND available_stock <= total_stock"},
	{"inventory_items", "chk_inventory_items_minimum", "minimum >= 0"},
	{"stock_ledger", "chk_stock_ledger_quantity", "quantity > 0"},
	{"loans", "chk_loans_returned", "returned_quantity >= 0 AND returned_quantity <= request_quantity"},
	{"stock_in_items", "chk_stock_in_items_quantity", "quantity > 0"},
	{"stock_out_items", "chk_stock_out_items_quantity", "quantity > 0"},
}

func Migrate(db *gorm.DB, log *zap.Logger) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.AuditLog{},
		&models.InventoryItem{},
		&models.StockLedgerEntry{},
		&models.StockIn{},
		&models.StockInItem{},
		&models.StockOut{},
		&models.StockOutItem{},
		&models.Loan{},
		&models.StockCount{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	for _, c := range checkConstraints {
		var exists bool
		err := db.Raw(`
			SELECT EXISTS (
				SELECT 1
				FROM information_schema.table_constraints
				WHERE table_name = ? AND constraint_name = ?
			)`, c.table, c.name).Scan(&exists).Error
		if err != nil {
			return fmt.Errorf("check constraint %s: %w", c.name, err)
		}
		if exists {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s CHECK (%s)", c.table, c.name, c.expr)
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("add constraint %s: %w", c.name, err)
		}
		log.Info("check constraint added", zap.String("table", c.table), zap.String("constraint", c.name))
	}

	log.Info("database migrated")
	return nil
}
