package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/distro/backoffice/internal/domain/inventory"
	"github.com/distro/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id string) (*inventory.Product, error) {
	var product inventory.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// IncrementStock adds delta to stock_quantity in a single UPDATE
func (r *GormProductRepository) IncrementStock(ctx context.Context, productID string, delta decimal.Decimal) error {
	result := r.db.WithContext(ctx).
		Model(&inventory.Product{}).
		Where("id = ?", productID).
		Updates(map[string]any{
			"stock_quantity": gorm.Expr("stock_quantity + ?", delta),
			"updated_at":     time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("NOT_FOUND", "Product "+productID+" not found")
	}
	return nil
}

// GormProductStockRepository implements ProductStockRepository using GORM
type GormProductStockRepository struct {
	db *gorm.DB
}

// NewGormProductStockRepository creates a new GormProductStockRepository
func NewGormProductStockRepository(db *gorm.DB) *GormProductStockRepository {
	return &GormProductStockRepository{db: db}
}

// FindByProductAndLocation finds the stock row of a product at a location
func (r *GormProductStockRepository) FindByProductAndLocation(ctx context.Context, productID, locationID string) (*inventory.ProductStock, error) {
	var stock inventory.ProductStock
	if err := r.db.WithContext(ctx).
		Where("product_id = ? AND location_id = ?", productID, locationID).
		First(&stock).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &stock, nil
}

// Increment upserts the (product, location) row, adding delta to an existing quantity
func (r *GormProductStockRepository) Increment(ctx context.Context, productID, locationID string, delta decimal.Decimal, at time.Time) error {
	stock := inventory.NewProductStock(productID, locationID, delta)
	stock.LastUpdated = at

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "product_id"}, {Name: "location_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity":     gorm.Expr("product_stocks.quantity + excluded.quantity"),
				"last_updated": gorm.Expr("excluded.last_updated"),
			}),
		}).
		Create(stock).Error
}

// Ensure the repositories implement their interfaces
var (
	_ inventory.ProductRepository      = (*GormProductRepository)(nil)
	_ inventory.ProductStockRepository = (*GormProductStockRepository)(nil)
)
