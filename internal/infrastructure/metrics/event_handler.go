package metrics

import (
	"context"

	"github.com/distro/backoffice/internal/domain/claim"
	"github.com/distro/backoffice/internal/domain/purchasing"
	"github.com/distro/backoffice/internal/domain/shared"
)

// EventHandler turns free-issue domain events into counter increments
type EventHandler struct {
	metrics *Metrics
}

// NewEventHandler creates an EventHandler recording into m
func NewEventHandler(m *Metrics) *EventHandler {
	return &EventHandler{metrics: m}
}

// EventTypes returns the events this handler records
func (h *EventHandler) EventTypes() []string {
	return []string{
		purchasing.EventTypeFreeIssueReceived,
		claim.EventTypeSupplierClaimApproved,
	}
}

// Handle records the event. Unknown event types are ignored.
func (h *EventHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *purchasing.FreeIssueReceivedEvent:
		h.metrics.RecordFreeIssue(e.BusinessID(), e.LineCount, e.TotalUnits.InexactFloat64())
	case *claim.SupplierClaimApprovedEvent:
		h.metrics.RecordClaim(e.BusinessID(), e.ItemCount)
	}
	return nil
}

var _ shared.EventHandler = (*EventHandler)(nil)
