// Package events publishes resource change notifications to live websocket watchers and to an
// AMQP exchange.
package events

import (
	"context"
	"errors"
	"time"
)

type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

type Event struct {
	Kind     string    `json:"kind"`
	Action   Action    `json:"action"`
	ID       string    `json:"id"`
	Resource any       `json:"resource,omitempty"`
	Time     time.Time `json:"time"`
}

func New(kind string, action Action, id string, resource any) Event {
	return Event{
		Kind:     kind,
		Action:   action,
		ID:       id,
		Resource: resource,
		Time:     time.Now().UTC(),
	}
}

// RoutingKey is "<kind>.<action>", e.g. "customers.updated".
func (e Event) RoutingKey() string {
	return e.Kind + "." + string(e.Action)
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Multi delivers an event to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
