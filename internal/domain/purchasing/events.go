package purchasing

import (
	"github.com/distro/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AggregateTypePurchase is the aggregate type of purchase events
const AggregateTypePurchase = "Purchase"

// EventTypeFreeIssueReceived is raised once a free-issue bill has been fully processed
const EventTypeFreeIssueReceived = "FreeIssueReceived"

// FreeIssueReceivedEvent is raised when a free-issue bill has been recorded and its stock received
type FreeIssueReceivedEvent struct {
	shared.BaseDomainEvent
	PurchaseID string          `json:"purchaseId"`
	InvoiceNo  string          `json:"invoiceNo"`
	SupplierID string          `json:"supplierId"`
	LineCount  int             `json:"lineCount"`
	TotalUnits decimal.Decimal `json:"totalUnits"`
}

// NewFreeIssueReceivedEvent creates a new FreeIssueReceivedEvent
func NewFreeIssueReceivedEvent(p *Purchase, lineCount int, totalUnits decimal.Decimal) *FreeIssueReceivedEvent {
	return &FreeIssueReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeFreeIssueReceived, AggregateTypePurchase, p.ID, p.BusinessID),
		PurchaseID:      p.PurchaseID,
		InvoiceNo:       p.InvoiceNo,
		SupplierID:      p.SupplierID,
		LineCount:       lineCount,
		TotalUnits:      totalUnits,
	}
}
