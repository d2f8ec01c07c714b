package shared

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent represents an event that occurred in the domain
type DomainEvent interface {
	EventID() string
	EventType() string
	OccurredAt() time.Time
	AggregateID() string
	AggregateType() string
	BusinessID() string
}

// BaseDomainEvent provides common fields for all domain events
type BaseDomainEvent struct {
	ID              string    `json:"id"`
	Type            string    `json:"type"`
	Timestamp       time.Time `json:"timestamp"`
	AggID           string    `json:"aggregateId"`
	AggType         string    `json:"aggregateType"`
	BusinessIDValue string    `json:"businessId"`
}

// EventID returns the unique event identifier
func (e *BaseDomainEvent) EventID() string {
	return e.ID
}

// EventType returns the type of the event
func (e *BaseDomainEvent) EventType() string {
	return e.Type
}

// OccurredAt returns when the event occurred
func (e *BaseDomainEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID returns the ID of the aggregate that produced this event
func (e *BaseDomainEvent) AggregateID() string {
	return e.AggID
}

// AggregateType returns the type of the aggregate
func (e *BaseDomainEvent) AggregateType() string {
	return e.AggType
}

// BusinessID returns the business the event belongs to
func (e *BaseDomainEvent) BusinessID() string {
	return e.BusinessIDValue
}

// NewBaseDomainEvent creates a new base domain event
func NewBaseDomainEvent(eventType, aggType, aggID, businessID string) BaseDomainEvent {
	return BaseDomainEvent{
		ID:              uuid.NewString(),
		Type:            eventType,
		Timestamp:       time.Now(),
		AggID:           aggID,
		AggType:         aggType,
		BusinessIDValue: businessID,
	}
}
