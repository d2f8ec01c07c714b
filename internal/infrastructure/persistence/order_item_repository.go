package persistence

import (
	"context"

	"github.com/distro/backoffice/internal/domain/claim"
	"gorm.io/gorm"
)

// GormOrderItemRepository implements OrderItemRepository using GORM
type GormOrderItemRepository struct {
	db *gorm.DB
}

// NewGormOrderItemRepository creates a new GormOrderItemRepository
func NewGormOrderItemRepository(db *gorm.DB) *GormOrderItemRepository {
	return &GormOrderItemRepository{db: db}
}

// FindUnclaimedByProduct returns the product's outstanding entitlements, oldest first
func (r *GormOrderItemRepository) FindUnclaimedByProduct(ctx context.Context, productID string) ([]claim.OrderItem, error) {
	var items []claim.OrderItem
	if err := r.db.WithContext(ctx).
		Where("product_id = ? AND free_quantity > 0 AND (claim_status IS NULL OR claim_status = ?)",
			productID, claim.ClaimStatusUnclaimed).
		Order("created_at ASC, id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindByClaimBatch returns the items grouped under a supplier claim
func (r *GormOrderItemRepository) FindByClaimBatch(ctx context.Context, claimID string) ([]claim.OrderItem, error) {
	var items []claim.OrderItem
	if err := r.db.WithContext(ctx).
		Where("claim_batch_id = ?", claimID).
		Order("created_at ASC, id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// MarkApproved moves the listed items into the claim batch.
// Items are updated regardless of their current status.
func (r *GormOrderItemRepository) MarkApproved(ctx context.Context, ids []string, claimID string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Model(&claim.OrderItem{}).
		Where("id IN ?", ids).
		Updates(map[string]any{
			"claim_status":   claim.ClaimStatusApproved,
			"claim_batch_id": claimID,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// Ensure GormOrderItemRepository implements OrderItemRepository
var _ claim.OrderItemRepository = (*GormOrderItemRepository)(nil)
