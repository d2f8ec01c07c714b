package purchasing

import "context"

// PurchaseRepository defines the interface for purchase persistence
type PurchaseRepository interface {
	// Create inserts a purchase header
	Create(ctx context.Context, purchase *Purchase) error

	// CreateItem inserts a purchase line
	CreateItem(ctx context.Context, item *PurchaseItem) error

	// FindByID finds a purchase header by its ID
	FindByID(ctx context.Context, id string) (*Purchase, error)

	// FindItems returns the lines of a purchase in insertion order
	FindItems(ctx context.Context, purchaseID string) ([]PurchaseItem, error)
}
