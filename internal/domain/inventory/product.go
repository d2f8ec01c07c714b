package inventory

import (
	"time"

	"github.com/distro/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry. StockQuantity is the catalog-level aggregate stock,
// which this service only ever changes additively.
type Product struct {
	shared.BaseEntity
	Name          string          `gorm:"type:varchar(200);not null;default:''" json:"name"`
	StockQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"stockQuantity"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// ProductStock is the per-location stock of a product. (ProductID, LocationID) is unique.
type ProductStock struct {
	ID          string          `gorm:"type:varchar(64);primaryKey" json:"id"`
	ProductID   string          `gorm:"type:varchar(64);not null;uniqueIndex:idx_product_stocks_product_location,priority:1" json:"productId"`
	LocationID  string          `gorm:"type:varchar(64);not null;uniqueIndex:idx_product_stocks_product_location,priority:2" json:"locationId"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"quantity"`
	LastUpdated time.Time       `gorm:"not null" json:"lastUpdated"`
}

// TableName returns the table name for GORM
func (ProductStock) TableName() string {
	return "product_stocks"
}

// NewProductStock creates a per-location stock row holding quantity
func NewProductStock(productID, locationID string, quantity decimal.Decimal) *ProductStock {
	return &ProductStock{
		ID:          shared.NewID(),
		ProductID:   productID,
		LocationID:  locationID,
		Quantity:    quantity,
		LastUpdated: time.Now(),
	}
}
