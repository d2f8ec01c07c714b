package inventory

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNewMainWarehouse(t *testing.T) {
	loc := NewMainWarehouse()

	assert.NotEmpty(t, loc.ID)
	assert.Equal(t, MainWarehouseName, loc.Name)
	assert.Nil(t, loc.BusinessID)
	assert.True(t, loc.IsShared())
}

func TestLocation_IsShared(t *testing.T) {
	owner := "wireman"
	loc := &Location{Name: MainWarehouseName, BusinessID: &owner}

	assert.False(t, loc.IsShared())
}

func TestNewProductStock(t *testing.T) {
	ps := NewProductStock("p1", "loc1", decimal.NewFromInt(7))

	assert.NotEmpty(t, ps.ID)
	assert.Equal(t, "p1", ps.ProductID)
	assert.Equal(t, "loc1", ps.LocationID)
	assert.True(t, ps.Quantity.Equal(decimal.NewFromInt(7)))
	assert.False(t, ps.LastUpdated.IsZero())
}
