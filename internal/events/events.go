// Package events is an in-process pub/sub bus for booking lifecycle events.
// Subscribers are decoupled from the booking service; cache invalidation and
// future integrations hang off the bus instead of the write path.
package events

import (
	"sync"
	"time"
)

// Booking lifecycle event types.
const (
	BookingCreated     = "booking.created"
	BookingApproved    = "booking.approved"
	BookingCancelled   = "booking.cancelled"
	BookingRescheduled = "booking.rescheduled"
)

// Event represents a lightweight domain event.
type Event struct {
	Type       string
	BookingID  string
	BusinessID string
	DateKey    string
	TimeKey    string
	CreatedAt  time.Time
}

// Handler reacts to an event. Handlers run synchronously on the publisher's
// goroutine; a handler that needs to block spawns its own.
type Handler func(event Event)

// Bus provides in-process pub/sub for booking events.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string][]Handler
}

// NewBus constructs an empty bus.
func NewBus() *Bus {
	return &Bus{subscribers: make(map[string][]Handler)}
}

// Subscribe registers a handler for a given event type.
func (b *Bus) Subscribe(eventType string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// SubscribeAll registers a handler for every booking lifecycle event.
func (b *Bus) SubscribeAll(handler Handler) {
	for _, t := range []string{BookingCreated, BookingApproved, BookingCancelled, BookingRescheduled} {
		b.Subscribe(t, handler)
	}
}

// Publish notifies subscribers of the event type. A nil bus is a no-op.
func (b *Bus) Publish(event Event) {
	if b == nil {
		return
	}
	b.mu.RLock()
	handlers := append([]Handler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	for _, handler := range handlers {
		handler(event)
	}
}
