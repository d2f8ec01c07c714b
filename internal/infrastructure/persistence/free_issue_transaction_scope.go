package persistence

import (
	"context"

	"github.com/distro/backoffice/internal/application/freeissue"
	"github.com/distro/backoffice/internal/domain/claim"
	"github.com/distro/backoffice/internal/domain/inventory"
	"github.com/distro/backoffice/internal/domain/purchasing"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// Every write of a bill commits together or not at all.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos freeissue.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}

// Repositories bundles the free-issue repositories over one *gorm.DB, which may be
// the root connection or an open transaction.
type Repositories struct {
	db *gorm.DB
}

// NewRepositories creates the repository set bound to db
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{db: db}
}

// Locations returns the location repository.
func (r *Repositories) Locations() inventory.LocationRepository {
	return NewGormLocationRepository(r.db)
}

// Products returns the product repository.
func (r *Repositories) Products() inventory.ProductRepository {
	return NewGormProductRepository(r.db)
}

// ProductStocks returns the per-location stock repository.
func (r *Repositories) ProductStocks() inventory.ProductStockRepository {
	return NewGormProductStockRepository(r.db)
}

// Purchases returns the purchase repository.
func (r *Repositories) Purchases() purchasing.PurchaseRepository {
	return NewGormPurchaseRepository(r.db)
}

// OrderItems returns the order item repository.
func (r *Repositories) OrderItems() claim.OrderItemRepository {
	return NewGormOrderItemRepository(r.db)
}

// SupplierClaims returns the supplier claim repository.
func (r *Repositories) SupplierClaims() claim.SupplierClaimRepository {
	return NewGormSupplierClaimRepository(r.db)
}

// NewLegacyTransactionScope returns a scope in which each statement commits on its own,
// so a failing bill keeps the steps that ran before the failure.
func NewLegacyTransactionScope(db *gorm.DB) *freeissue.NoOpTransactionScope {
	repos := NewRepositories(db)
	return freeissue.NewNoOpTransactionScope(
		repos.Locations(),
		repos.Products(),
		repos.ProductStocks(),
		repos.Purchases(),
		repos.OrderItems(),
		repos.SupplierClaims(),
	)
}

// NewFreeIssueScope selects the transactional scope when atomic is set and the
// statement-by-statement scope otherwise.
func NewFreeIssueScope(db *gorm.DB, atomic bool) freeissue.TransactionScope {
	if atomic {
		return NewGormTransactionScope(db)
	}
	return NewLegacyTransactionScope(db)
}

// Ensure GormTransactionScope implements TransactionScope
var _ freeissue.TransactionScope = (*GormTransactionScope)(nil)

// Ensure Repositories implements TransactionalRepositories
var _ freeissue.TransactionalRepositories = (*Repositories)(nil)
