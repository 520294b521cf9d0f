// Package events fans domain events out to the broker and to connected agents.
package events

import (
	"context"
	"errors"
	"time"
)

const (
	RequestCreated       = "service_request.created"
	RequestAssigned      = "service_request.assigned"
	RequestUnassigned    = "service_request.unassigned"
	RequestStatusChanged = "service_request.status_changed"
	PaymentUpdated       = "payment.updated"
	RegistrationCreated  = "agent_registration.created"
	RegistrationReviewed = "agent_registration.reviewed"
)

type Event struct {
	Type      string         `json:"type"`
	RequestID int64          `json:"request_id,omitempty"`
	AgentID   int64          `json:"agent_id,omitempty"`
	Status    string         `json:"status,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	At        time.Time      `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Multi publishes to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, ev Event) error {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
