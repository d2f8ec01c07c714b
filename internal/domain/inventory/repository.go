package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// LocationRepository defines the interface for location persistence
type LocationRepository interface {
	// FindMainWarehouse finds the shared Main Warehouse.
	// Returns shared.ErrNotFound when it has not been created yet.
	FindMainWarehouse(ctx context.Context) (*Location, error)

	// Create inserts a new location
	Create(ctx context.Context, location *Location) error
}

// ProductRepository defines the interface for catalog product persistence
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id string) (*Product, error)

	// IncrementStock atomically adds delta to the product's stock quantity.
	// Returns shared.ErrNotFound when the product does not exist.
	IncrementStock(ctx context.Context, productID string, delta decimal.Decimal) error
}

// ProductStockRepository defines the interface for per-location stock persistence
type ProductStockRepository interface {
	// FindByProductAndLocation finds the stock row for a product at a location
	FindByProductAndLocation(ctx context.Context, productID, locationID string) (*ProductStock, error)

	// Increment atomically adds delta to the (product, location) row, creating it when absent,
	// and stamps last_updated with at.
	Increment(ctx context.Context, productID, locationID string, delta decimal.Decimal, at time.Time) error
}
