package claim

import (
	"time"

	"github.com/shopspring/decimal"
)

// Claim status values of an order item. A NULL status is treated as Unclaimed.
const (
	ClaimStatusUnclaimed = "Unclaimed"
	ClaimStatusApproved  = "Approved"
)

// OrderItem is a sales order line carrying a free-goods entitlement owed to the customer.
// It is the source of supplier claims.
type OrderItem struct {
	ID           string          `gorm:"type:varchar(64);primaryKey" json:"id"`
	OrderID      string          `gorm:"type:varchar(64);index" json:"orderId"`
	ProductID    string          `gorm:"type:varchar(64);not null;index" json:"productId"`
	FreeQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"freeQuantity"`
	ClaimStatus  *string         `gorm:"type:varchar(20)" json:"claimStatus"`
	ClaimBatchID *string         `gorm:"type:varchar(64);index" json:"claimBatchId"`
	CreatedAt    time.Time       `gorm:"not null;index" json:"createdAt"`
}

// TableName returns the table name for GORM
func (OrderItem) TableName() string {
	return "order_items"
}

// IsClaimable reports whether the item still has an outstanding free-goods entitlement
func (o *OrderItem) IsClaimable() bool {
	if !o.FreeQuantity.IsPositive() {
		return false
	}
	return o.ClaimStatus == nil || *o.ClaimStatus == ClaimStatusUnclaimed
}

// IsApproved reports whether the item has been swept into a supplier claim
func (o *OrderItem) IsApproved() bool {
	return o.ClaimStatus != nil && *o.ClaimStatus == ClaimStatusApproved
}
