package persistence

import (
	"context"
	"errors"

	"github.com/distro/backoffice/internal/domain/claim"
	"github.com/distro/backoffice/internal/domain/shared"
	"gorm.io/gorm"
)

// GormSupplierClaimRepository implements SupplierClaimRepository using GORM
type GormSupplierClaimRepository struct {
	db *gorm.DB
}

// NewGormSupplierClaimRepository creates a new GormSupplierClaimRepository
func NewGormSupplierClaimRepository(db *gorm.DB) *GormSupplierClaimRepository {
	return &GormSupplierClaimRepository{db: db}
}

// Count returns the number of existing supplier claims
func (r *GormSupplierClaimRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&claim.SupplierClaim{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create inserts a supplier claim
func (r *GormSupplierClaimRepository) Create(ctx context.Context, c *claim.SupplierClaim) error {
	return r.db.WithContext(ctx).Create(c).Error
}

// FindByID finds a claim by its ID
func (r *GormSupplierClaimRepository) FindByID(ctx context.Context, id string) (*claim.SupplierClaim, error) {
	var c claim.SupplierClaim
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// List returns a page of claims, newest first, and the total matching count
func (r *GormSupplierClaimRepository) List(ctx context.Context, filter shared.Filter) ([]claim.SupplierClaim, int64, error) {
	var total int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&claim.SupplierClaim{}), filter).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := ValidateSortField(filter.OrderBy, SupplierClaimSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query := r.applyFilter(r.db.WithContext(ctx).Model(&claim.SupplierClaim{}), filter).
		Order(orderBy + " " + orderDir)
	if orderBy != "claim_number" {
		query = query.Order("claim_number " + orderDir)
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	var claims []claim.SupplierClaim
	if err := query.Find(&claims).Error; err != nil {
		return nil, 0, err
	}
	return claims, total, nil
}

// applyFilter restricts the query by business and supplier when the filter carries them
func (r *GormSupplierClaimRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if businessID, ok := filter.Filters["business_id"].(string); ok && businessID != "" {
		query = query.Where("business_id = ?", businessID)
	}
	if supplierID, ok := filter.Filters["supplier_id"].(string); ok && supplierID != "" {
		query = query.Where("supplier_id = ?", supplierID)
	}
	return query
}

// Ensure GormSupplierClaimRepository implements SupplierClaimRepository
var _ claim.SupplierClaimRepository = (*GormSupplierClaimRepository)(nil)
