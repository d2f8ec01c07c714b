package claim

import (
	"fmt"
	"strings"

	"github.com/distro/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Supplier claim status values
const (
	StatusApproved = "Approved"
)

// AutoClaimPrefix prefixes claim numbers generated from free-issue bills
const AutoClaimPrefix = "CLM-AUTO-"

// claimNumberOffset is added to the existing claim count to derive the next number
const claimNumberOffset = 1001

// SupplierClaim groups order items whose free-goods entitlements were settled by supplier stock
type SupplierClaim struct {
	shared.BaseEntity
	ClaimNumber      string          `gorm:"type:varchar(50);not null;uniqueIndex" json:"claimNumber"`
	SupplierID       string          `gorm:"type:varchar(64);not null;index" json:"supplierId"`
	BusinessID       string          `gorm:"type:varchar(64);not null;index" json:"businessId"`
	Status           string          `gorm:"type:varchar(20);not null" json:"status"`
	TotalClaimAmount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"totalClaimAmount"`
	Notes            string          `gorm:"type:text" json:"notes"`
}

// TableName returns the table name for GORM
func (SupplierClaim) TableName() string {
	return "supplier_claims"
}

// NextClaimNumber derives the claim number that follows count existing claims
func NextClaimNumber(count int64) string {
	return fmt.Sprintf("%s%d", AutoClaimPrefix, count+claimNumberOffset)
}

// NewAutoClaim creates an approved, zero-amount claim for a free-issue bill
func NewAutoClaim(claimNumber, supplierID, businessID, invoiceNo string) (*SupplierClaim, error) {
	if !strings.HasPrefix(claimNumber, AutoClaimPrefix) {
		return nil, shared.NewDomainError("INVALID_INPUT", "Claim number must start with "+AutoClaimPrefix)
	}
	if supplierID == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Supplier ID cannot be empty")
	}
	return &SupplierClaim{
		BaseEntity:       shared.NewBaseEntity(),
		ClaimNumber:      claimNumber,
		SupplierID:       supplierID,
		BusinessID:       businessID,
		Status:           StatusApproved,
		TotalClaimAmount: decimal.Zero,
		Notes:            "Auto-generated from free issue bill " + invoiceNo,
	}, nil
}
