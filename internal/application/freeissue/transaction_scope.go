package freeissue

import (
	"context"

	"github.com/distro/backoffice/internal/domain/claim"
	"github.com/distro/backoffice/internal/domain/inventory"
	"github.com/distro/backoffice/internal/domain/purchasing"
)

// TransactionScope runs a free-issue bill against a set of repositories.
// The GORM-backed scope commits or rolls back every write of the bill together.
type TransactionScope interface {
	// Execute runs fn. If fn returns an error, the scope's writes are rolled back
	// when the scope is transactional.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides the repositories touched by a free-issue bill.
// All repositories returned by one scope share the same underlying connection or transaction.
type TransactionalRepositories interface {
	Locations() inventory.LocationRepository
	Products() inventory.ProductRepository
	ProductStocks() inventory.ProductStockRepository
	Purchases() purchasing.PurchaseRepository
	OrderItems() claim.OrderItemRepository
	SupplierClaims() claim.SupplierClaimRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use transactions.
// Each repository call commits on its own, so a failure part-way through a bill
// leaves the earlier steps in place.
type NoOpTransactionScope struct {
	locations      inventory.LocationRepository
	products       inventory.ProductRepository
	productStocks  inventory.ProductStockRepository
	purchases      purchasing.PurchaseRepository
	orderItems     claim.OrderItemRepository
	supplierClaims claim.SupplierClaimRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	locations inventory.LocationRepository,
	products inventory.ProductRepository,
	productStocks inventory.ProductStockRepository,
	purchases purchasing.PurchaseRepository,
	orderItems claim.OrderItemRepository,
	supplierClaims claim.SupplierClaimRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		locations:      locations,
		products:       products,
		productStocks:  productStocks,
		purchases:      purchases,
		orderItems:     orderItems,
		supplierClaims: supplierClaims,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Locations returns the location repository.
func (s *NoOpTransactionScope) Locations() inventory.LocationRepository { return s.locations }

// Products returns the product repository.
func (s *NoOpTransactionScope) Products() inventory.ProductRepository { return s.products }

// ProductStocks returns the per-location stock repository.
func (s *NoOpTransactionScope) ProductStocks() inventory.ProductStockRepository {
	return s.productStocks
}

// Purchases returns the purchase repository.
func (s *NoOpTransactionScope) Purchases() purchasing.PurchaseRepository { return s.purchases }

// OrderItems returns the order item repository.
func (s *NoOpTransactionScope) OrderItems() claim.OrderItemRepository { return s.orderItems }

// SupplierClaims returns the supplier claim repository.
func (s *NoOpTransactionScope) SupplierClaims() claim.SupplierClaimRepository {
	return s.supplierClaims
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
