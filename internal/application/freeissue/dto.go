package freeissue

import (
	"time"

	"github.com/distro/backoffice/internal/domain/claim"
	"github.com/distro/backoffice/internal/domain/inventory"
	"github.com/distro/backoffice/internal/domain/purchasing"
	"github.com/shopspring/decimal"
)

// BillLine is one product line of a free-issue bill
type BillLine struct {
	ProductID string
	Quantity  decimal.Decimal
}

// ReceiveFreeIssueInput is a validated free-issue bill
type ReceiveFreeIssueInput struct {
	InvoiceNo        string
	PurchaseDate     time.Time
	SupplierID       string
	Lines            []BillLine
	ExplicitClaimIDs []string
}

// TotalUnits returns the sum of all line quantities
func (in ReceiveFreeIssueInput) TotalUnits() decimal.Decimal {
	total := decimal.Zero
	for _, l := range in.Lines {
		total = total.Add(l.Quantity)
	}
	return total
}

// FreeIssueResult is the outcome of a processed free-issue bill.
// ClaimID and ClaimNumber are empty when no order item was claimed.
type FreeIssueResult struct {
	PurchaseID        string   `json:"purchaseId"`
	PurchaseReference string   `json:"purchaseReference"`
	LocationID        string   `json:"locationId"`
	ClaimID           string   `json:"claimId,omitempty"`
	ClaimNumber       string   `json:"claimNumber,omitempty"`
	MatchedClaimIDs   []string `json:"matchedClaimIds"`
	ClaimedItemIDs    []string `json:"claimedItemIds"`
}

// ClaimListFilter represents filter options for the claim list
type ClaimListFilter struct {
	SupplierID string `form:"supplier_id"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	SortBy     string `form:"sort_by"`
	SortOrder  string `form:"sort_order" binding:"omitempty,oneof=asc desc ASC DESC"`
}

// ClaimResponse represents a supplier claim in API responses
type ClaimResponse struct {
	ID               string                `json:"id"`
	ClaimNumber      string                `json:"claimNumber"`
	SupplierID       string                `json:"supplierId"`
	BusinessID       string                `json:"businessId"`
	Status           string                `json:"status"`
	TotalClaimAmount decimal.Decimal       `json:"totalClaimAmount"`
	Notes            string                `json:"notes"`
	CreatedAt        time.Time             `json:"createdAt"`
	Items            []EntitlementResponse `json:"items,omitempty"`
}

// EntitlementResponse represents an order item's free-goods entitlement
type EntitlementResponse struct {
	ID           string          `json:"id"`
	OrderID      string          `json:"orderId"`
	ProductID    string          `json:"productId"`
	FreeQuantity decimal.Decimal `json:"freeQuantity"`
	ClaimStatus  *string         `json:"claimStatus"`
	ClaimBatchID *string         `json:"claimBatchId"`
	Approved     bool            `json:"approved"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// LocationResponse represents a stock location
type LocationResponse struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	BusinessID *string `json:"businessId"`
	Shared     bool    `json:"shared"`
}

// PurchaseResponse represents a purchase bill with its lines
type PurchaseResponse struct {
	ID                string                 `json:"id"`
	PurchaseReference string                 `json:"purchaseReference"`
	InvoiceNo         string                 `json:"invoiceNo"`
	SupplierID        string                 `json:"supplierId"`
	BusinessID        string                 `json:"businessId"`
	PurchaseDate      time.Time              `json:"purchaseDate"`
	TotalAmount       decimal.Decimal        `json:"totalAmount"`
	PaidAmount        decimal.Decimal        `json:"paidAmount"`
	PaymentStatus     string                 `json:"paymentStatus"`
	Status            string                 `json:"status"`
	FreeIssue         bool                   `json:"freeIssue"`
	CreatedAt         time.Time              `json:"createdAt"`
	Items             []PurchaseItemResponse `json:"items"`
}

// PurchaseItemResponse represents one purchase line
type PurchaseItemResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"productId"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unitCost"`
	TotalCost decimal.Decimal `json:"totalCost"`
}

// ProductStockResponse compares a product's catalog stock with its Main Warehouse stock
type ProductStockResponse struct {
	ProductID         string          `json:"productId"`
	Name              string          `json:"name"`
	StockQuantity     decimal.Decimal `json:"stockQuantity"`
	LocationID        string          `json:"locationId"`
	LocationQuantity  decimal.Decimal `json:"locationQuantity"`
	LocationUpdatedAt *time.Time      `json:"locationUpdatedAt"`
}

// ToClaimResponse converts a domain claim to a response
func ToClaimResponse(c *claim.SupplierClaim) ClaimResponse {
	return ClaimResponse{
		ID:               c.ID,
		ClaimNumber:      c.ClaimNumber,
		SupplierID:       c.SupplierID,
		BusinessID:       c.BusinessID,
		Status:           c.Status,
		TotalClaimAmount: c.TotalClaimAmount,
		Notes:            c.Notes,
		CreatedAt:        c.CreatedAt,
	}
}

// ToEntitlementResponse converts a domain order item to a response
func ToEntitlementResponse(o *claim.OrderItem) EntitlementResponse {
	return EntitlementResponse{
		ID:           o.ID,
		OrderID:      o.OrderID,
		ProductID:    o.ProductID,
		FreeQuantity: o.FreeQuantity,
		ClaimStatus:  o.ClaimStatus,
		ClaimBatchID: o.ClaimBatchID,
		Approved:     o.IsApproved(),
		CreatedAt:    o.CreatedAt,
	}
}

// ToEntitlementResponses converts a slice of order items
func ToEntitlementResponses(items []claim.OrderItem) []EntitlementResponse {
	result := make([]EntitlementResponse, len(items))
	for i := range items {
		result[i] = ToEntitlementResponse(&items[i])
	}
	return result
}

// ToLocationResponse converts a domain location to a response
func ToLocationResponse(l *inventory.Location) LocationResponse {
	return LocationResponse{
		ID:         l.ID,
		Name:       l.Name,
		BusinessID: l.BusinessID,
		Shared:     l.IsShared(),
	}
}

// ToPurchaseResponse converts a purchase header and its lines to a response
func ToPurchaseResponse(p *purchasing.Purchase, items []purchasing.PurchaseItem) PurchaseResponse {
	lines := make([]PurchaseItemResponse, len(items))
	for i, item := range items {
		lines[i] = PurchaseItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitCost:  item.UnitCost,
			TotalCost: item.TotalCost,
		}
	}
	return PurchaseResponse{
		ID:                p.ID,
		PurchaseReference: p.PurchaseID,
		InvoiceNo:         p.InvoiceNo,
		SupplierID:        p.SupplierID,
		BusinessID:        p.BusinessID,
		PurchaseDate:      p.PurchaseDate,
		TotalAmount:       p.TotalAmount,
		PaidAmount:        p.PaidAmount,
		PaymentStatus:     p.PaymentStatus,
		Status:            p.Status,
		FreeIssue:         p.IsFreeIssue(),
		CreatedAt:         p.CreatedAt,
		Items:             lines,
	}
}
