package persistence

import (
	"context"
	"errors"

	"github.com/distro/backoffice/internal/domain/purchasing"
	"github.com/distro/backoffice/internal/domain/shared"
	"gorm.io/gorm"
)

// GormPurchaseRepository implements PurchaseRepository using GORM
type GormPurchaseRepository struct {
	db *gorm.DB
}

// NewGormPurchaseRepository creates a new GormPurchaseRepository
func NewGormPurchaseRepository(db *gorm.DB) *GormPurchaseRepository {
	return &GormPurchaseRepository{db: db}
}

// Create inserts a purchase header
func (r *GormPurchaseRepository) Create(ctx context.Context, purchase *purchasing.Purchase) error {
	return r.db.WithContext(ctx).Create(purchase).Error
}

// CreateItem inserts a purchase line
func (r *GormPurchaseRepository) CreateItem(ctx context.Context, item *purchasing.PurchaseItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// FindByID finds a purchase header by its ID
func (r *GormPurchaseRepository) FindByID(ctx context.Context, id string) (*purchasing.Purchase, error) {
	var purchase purchasing.Purchase
	if err := r.db.WithContext(ctx).First(&purchase, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &purchase, nil
}

// FindItems returns the lines of a purchase in insertion order
func (r *GormPurchaseRepository) FindItems(ctx context.Context, purchaseID string) ([]purchasing.PurchaseItem, error) {
	var items []purchasing.PurchaseItem
	if err := r.db.WithContext(ctx).
		Where("purchase_id = ?", purchaseID).
		Order("created_at ASC, id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Ensure GormPurchaseRepository implements PurchaseRepository
var _ purchasing.PurchaseRepository = (*GormPurchaseRepository)(nil)
