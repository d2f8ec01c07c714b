package inventory

import "github.com/distro/backoffice/internal/domain/shared"

// MainWarehouseName is the name of the shared, business-agnostic default location.
const MainWarehouseName = "Main Warehouse"

// Location is a stock location. A nil BusinessID marks a location shared by all businesses.
type Location struct {
	shared.BaseEntity
	Name       string  `gorm:"type:varchar(200);not null" json:"name"`
	BusinessID *string `gorm:"type:varchar(64);index" json:"businessId"`
}

// TableName returns the table name for GORM
func (Location) TableName() string {
	return "locations"
}

// NewMainWarehouse creates the shared Main Warehouse location
func NewMainWarehouse() *Location {
	return &Location{
		BaseEntity: shared.NewBaseEntity(),
		Name:       MainWarehouseName,
	}
}

// IsShared reports whether the location belongs to no particular business
func (l *Location) IsShared() bool {
	return l.BusinessID == nil
}
