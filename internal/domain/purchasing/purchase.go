package purchasing

import (
	"encoding/hex"
	"strings"
	"time"

	"github.com/distro/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Purchase status values
const (
	StatusReceived = "Received"

	PaymentStatusPaid = "Paid"
)

// FreeIssuePrefix prefixes the bill reference of free-issue purchases
const FreeIssuePrefix = "FREE"

// QuantityScale is the number of decimal places quantity columns store
const QuantityScale int32 = 4

// FitsQuantityScale reports whether q is stored exactly, without rounding to QuantityScale places
func FitsQuantityScale(q decimal.Decimal) bool {
	return q.Equal(q.Truncate(QuantityScale))
}

// Purchase is a purchase bill header
type Purchase struct {
	shared.BaseEntity
	PurchaseID    string          `gorm:"type:varchar(64);not null;index" json:"purchaseId"`
	InvoiceNo     string          `gorm:"type:varchar(100);not null" json:"invoiceNo"`
	SupplierID    string          `gorm:"type:varchar(64);not null;index" json:"supplierId"`
	BusinessID    string          `gorm:"type:varchar(64);not null;index" json:"businessId"`
	PurchaseDate  time.Time       `gorm:"type:date;not null" json:"purchaseDate"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"totalAmount"`
	PaidAmount    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"paidAmount"`
	PaymentStatus string          `gorm:"type:varchar(20);not null" json:"paymentStatus"`
	Status        string          `gorm:"type:varchar(20);not null" json:"status"`
}

// TableName returns the table name for GORM
func (Purchase) TableName() string {
	return "purchases"
}

// NewFreeIssuePurchase creates the header of a zero-cost free-issue bill.
// Free-issue bills are settled on arrival: nothing is owed, so the bill is Paid and Received.
func NewFreeIssuePurchase(businessID, invoiceNo, supplierID string, purchaseDate time.Time) (*Purchase, error) {
	invoiceNo = strings.TrimSpace(invoiceNo)
	if invoiceNo == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invoice number cannot be empty")
	}
	if strings.TrimSpace(supplierID) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Supplier ID cannot be empty")
	}
	if businessID == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Business ID cannot be empty")
	}
	if purchaseDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Purchase date is required")
	}

	return &Purchase{
		BaseEntity:    shared.NewBaseEntity(),
		PurchaseID:    NewBillReference(FreeIssuePrefix, purchaseDate),
		InvoiceNo:     invoiceNo,
		SupplierID:    supplierID,
		BusinessID:    businessID,
		PurchaseDate:  purchaseDate,
		TotalAmount:   decimal.Zero,
		PaidAmount:    decimal.Zero,
		PaymentStatus: PaymentStatusPaid,
		Status:        StatusReceived,
	}, nil
}

// IsFreeIssue reports whether the purchase is a zero-cost free-issue bill
func (p *Purchase) IsFreeIssue() bool {
	return strings.HasPrefix(p.PurchaseID, FreeIssuePrefix+"-")
}

// NewBillReference builds a human-readable bill reference: <prefix>-<yyyymmdd>-<8 hex>.
func NewBillReference(prefix string, date time.Time) string {
	id := uuid.New()
	return prefix + "-" + date.Format("20060102") + "-" + hex.EncodeToString(id[:4])
}

// PurchaseItem is a single line of a purchase bill.
// PurchaseID references Purchase.ID.
type PurchaseItem struct {
	ID           string          `gorm:"type:varchar(64);primaryKey" json:"id"`
	PurchaseID   string          `gorm:"type:varchar(64);not null;index" json:"purchaseId"`
	ProductID    string          `gorm:"type:varchar(64);not null;index" json:"productId"`
	Quantity     decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
	UnitCost     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"unitCost"`
	TotalCost    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"totalCost"`
	SellingPrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"sellingPrice"`
	MRP          decimal.Decimal `gorm:"column:mrp;type:decimal(18,4);not null;default:0" json:"mrp"`
	CreatedAt    time.Time       `gorm:"not null" json:"createdAt"`
}

// TableName returns the table name for GORM
func (PurchaseItem) TableName() string {
	return "purchase_items"
}

// NewFreeIssueItem creates a zero-cost purchase line for quantity units of productID
func NewFreeIssueItem(purchaseID, productID string, quantity decimal.Decimal) (*PurchaseItem, error) {
	if purchaseID == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Purchase ID cannot be empty")
	}
	if strings.TrimSpace(productID) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Product ID cannot be empty")
	}
	if !quantity.IsPositive() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Quantity must be positive")
	}
	if !FitsQuantityScale(quantity) {
		return nil, shared.NewDomainError("INVALID_INPUT", "Quantity has more than 4 decimal places")
	}
	return &PurchaseItem{
		ID:           shared.NewID(),
		PurchaseID:   purchaseID,
		ProductID:    productID,
		Quantity:     quantity,
		UnitCost:     decimal.Zero,
		TotalCost:    decimal.Zero,
		SellingPrice: decimal.Zero,
		MRP:          decimal.Zero,
		CreatedAt:    time.Now(),
	}, nil
}
