package persistence

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/distro/backoffice/internal/domain/claim"
	"github.com/distro/backoffice/internal/domain/inventory"
	"github.com/distro/backoffice/internal/domain/purchasing"
	"github.com/distro/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupFreeIssueTestDB opens an in-memory SQLite database with the free-issue schema.
// A single connection keeps every statement on the same in-memory database.
func setupFreeIssueTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&inventory.Location{},
		&inventory.Product{},
		&inventory.ProductStock{},
		&purchasing.Purchase{},
		&purchasing.PurchaseItem{},
		&claim.OrderItem{},
		&claim.SupplierClaim{},
	))
	require.NoError(t, db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_locations_shared_name ON locations (name) WHERE business_id IS NULL`,
	).Error)

	return db
}

// newMockGormDB creates a GORM handle over sqlmock speaking the postgres dialect
func newMockGormDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

var testEpoch = time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

func seedProduct(t *testing.T, db *gorm.DB, id string, stock int64) {
	t.Helper()
	p := &inventory.Product{
		BaseEntity:    shared.BaseEntity{ID: id, CreatedAt: testEpoch, UpdatedAt: testEpoch},
		Name:          "Product " + id,
		StockQuantity: decimal.NewFromInt(stock),
	}
	require.NoError(t, db.Create(p).Error)
}

// seedOrderItem creates an entitlement; minute orders items by creation time.
func seedOrderItem(t *testing.T, db *gorm.DB, id, productID string, freeQty int64, status *string, minute int) {
	t.Helper()
	item := &claim.OrderItem{
		ID:           id,
		OrderID:      "order-" + id,
		ProductID:    productID,
		FreeQuantity: decimal.NewFromInt(freeQty),
		ClaimStatus:  status,
		CreatedAt:    testEpoch.Add(time.Duration(minute) * time.Minute),
	}
	require.NoError(t, db.Create(item).Error)
}

func seedClaims(t *testing.T, db *gorm.DB, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		c := &claim.SupplierClaim{
			BaseEntity:       shared.NewBaseEntity(),
			ClaimNumber:      fmt.Sprintf("CLM-MANUAL-%d", i+1),
			SupplierID:       "S0",
			BusinessID:       "wireman",
			Status:           claim.StatusApproved,
			TotalClaimAmount: decimal.Zero,
		}
		require.NoError(t, db.Create(c).Error)
	}
}

func productStock(t *testing.T, db *gorm.DB, id string) decimal.Decimal {
	t.Helper()
	var p inventory.Product
	require.NoError(t, db.First(&p, "id = ?", id).Error)
	return p.StockQuantity
}

func orderItem(t *testing.T, db *gorm.DB, id string) *claim.OrderItem {
	t.Helper()
	var item claim.OrderItem
	require.NoError(t, db.First(&item, "id = ?", id).Error)
	return &item
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func strPtr(s string) *string {
	return &s
}
