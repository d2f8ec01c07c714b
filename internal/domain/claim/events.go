package claim

import "github.com/distro/backoffice/internal/domain/shared"

// AggregateTypeSupplierClaim is the aggregate type of claim events
const AggregateTypeSupplierClaim = "SupplierClaim"

// EventTypeSupplierClaimApproved is raised when order items are closed under a new claim
const EventTypeSupplierClaimApproved = "SupplierClaimApproved"

// SupplierClaimApprovedEvent is raised when a claim batch is created and its items approved
type SupplierClaimApprovedEvent struct {
	shared.BaseDomainEvent
	ClaimID     string `json:"claimId"`
	ClaimNumber string `json:"claimNumber"`
	SupplierID  string `json:"supplierId"`
	ItemCount   int    `json:"itemCount"`
}

// NewSupplierClaimApprovedEvent creates a new SupplierClaimApprovedEvent
func NewSupplierClaimApprovedEvent(c *SupplierClaim, itemCount int) *SupplierClaimApprovedEvent {
	return &SupplierClaimApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSupplierClaimApproved, AggregateTypeSupplierClaim, c.ID, c.BusinessID),
		ClaimID:         c.ID,
		ClaimNumber:     c.ClaimNumber,
		SupplierID:      c.SupplierID,
		ItemCount:       itemCount,
	}
}
