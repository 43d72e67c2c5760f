package core

import (
	"context"
	"time"
)

type EventType string

const (
	EventAllocationCompleted EventType = "AllocationCompleted"
	EventApplicationAccepted EventType = "ApplicationAccepted"
	EventApplicationRejected EventType = "ApplicationRejected"
)

// Event is the shape handed to downstream notification collaborators
// (emailing, dashboards). The core never depends on how it is dispatched.
type Event struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	OccurredAt time.Time `json:"occurred_at"` // UTC
	Payload    interface{}
}

// Notifier is any service that can dispatch domain events.
// Implementations must not fail the calling business operation.
type Notifier interface {
	Notify(ctx context.Context, evt Event)
}
