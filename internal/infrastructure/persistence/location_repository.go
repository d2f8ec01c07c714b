package persistence

import (
	"context"
	"errors"

	"github.com/distro/backoffice/internal/domain/inventory"
	"github.com/distro/backoffice/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormLocationRepository implements LocationRepository using GORM
type GormLocationRepository struct {
	db *gorm.DB
}

// NewGormLocationRepository creates a new GormLocationRepository
func NewGormLocationRepository(db *gorm.DB) *GormLocationRepository {
	return &GormLocationRepository{db: db}
}

// FindMainWarehouse finds the shared Main Warehouse
func (r *GormLocationRepository) FindMainWarehouse(ctx context.Context) (*inventory.Location, error) {
	var loc inventory.Location
	if err := r.db.WithContext(ctx).
		Where("business_id IS NULL AND name = ?", inventory.MainWarehouseName).
		Order("created_at ASC").
		First(&loc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &loc, nil
}

// Create inserts a location. A conflicting shared location of the same name is
// left in place, so racing creators of the Main Warehouse end up with one row.
func (r *GormLocationRepository) Create(ctx context.Context, location *inventory.Location) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(location).Error
}

// Ensure GormLocationRepository implements LocationRepository
var _ inventory.LocationRepository = (*GormLocationRepository)(nil)
