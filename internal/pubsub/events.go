// Package pubsub provides a generic publish/subscribe event system. Stores
// publish their changes through it and Bubble Tea models consume them as
// messages.
package pubsub

import (
	"context"
	"time"
)

// EventType represents the type of event being published.
type EventType string

const (
	CreatedEvent   EventType = "created"
	UpdatedEvent   EventType = "updated"
	DeletedEvent   EventType = "deleted"
	ActivatedEvent EventType = "activated"
	ReloadedEvent  EventType = "reloaded"
)

// Event represents a published event with a typed payload.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Filter decides whether a subscriber receives an event.
type Filter[T any] func(Event[T]) bool

// Subscriber provides a subscription channel for events.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher allows publishing events with a typed payload.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}
