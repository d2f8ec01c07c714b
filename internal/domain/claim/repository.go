package claim

import (
	"context"

	"github.com/distro/backoffice/internal/domain/shared"
)

// OrderItemRepository defines the interface for order item (entitlement) persistence
type OrderItemRepository interface {
	// FindUnclaimedByProduct returns the product's outstanding entitlements, oldest first:
	// free_quantity > 0 and claim_status NULL or Unclaimed, ordered by created_at ascending.
	FindUnclaimedByProduct(ctx context.Context, productID string) ([]OrderItem, error)

	// FindByClaimBatch returns the items grouped under a supplier claim
	FindByClaimBatch(ctx context.Context, claimID string) ([]OrderItem, error)

	// MarkApproved sets claim_status=Approved and claim_batch_id=claimID on every listed item
	// and returns the number of rows updated.
	MarkApproved(ctx context.Context, ids []string, claimID string) (int64, error)
}

// SupplierClaimRepository defines the interface for supplier claim persistence
type SupplierClaimRepository interface {
	// Count returns the number of existing supplier claims
	Count(ctx context.Context) (int64, error)

	// Create inserts a supplier claim
	Create(ctx context.Context, c *SupplierClaim) error

	// FindByID finds a claim by its ID
	FindByID(ctx context.Context, id string) (*SupplierClaim, error)

	// List returns a page of claims and the total matching count.
	// filter.Filters["supplier_id"] and ["business_id"] restrict the result when set.
	List(ctx context.Context, filter shared.Filter) ([]SupplierClaim, int64, error)
}
