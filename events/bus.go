// Package events defines the typed in-process publish/subscribe channel the
// feed listens on for live local events, replacing stringly-named broadcast
// events with distinct payload structs.
package events

import (
	"context"
	"sync"
	"time"
)

// EntityChanged signals that a product or category was just mutated in this
// session. ChangedFields is optional and only meaningful for updates.
type EntityChanged struct {
	Subject       string
	Action        string
	Label         string
	ChangedFields []string
	Actor         string
	OccurredAt    time.Time
}

// StockMovementOccurred signals that stock was just received or issued in
// this session.
type StockMovementOccurred struct {
	ProductLabel string
	Direction    string
	Quantity     string
	Actor        string
	OccurredAt   time.Time
}

// Unsubscribe detaches a previously registered handler. Safe to call more
// than once.
type Unsubscribe func()

// Bus is the publish/subscribe contract the feed consumes for the lifetime of
// its active state.
type Bus interface {
	SubscribeEntityChanged(handler func(context.Context, EntityChanged)) Unsubscribe
	SubscribeStockMovement(handler func(context.Context, StockMovementOccurred)) Unsubscribe
	PublishEntityChanged(ctx context.Context, event EntityChanged)
	PublishStockMovement(ctx context.Context, event StockMovementOccurred)
}

type entitySubscription struct {
	id      int
	handler func(context.Context, EntityChanged)
}

type movementSubscription struct {
	id      int
	handler func(context.Context, StockMovementOccurred)
}

// InMemoryBus is the default Bus implementation: synchronous dispatch to all
// registered handlers in registration order.
type InMemoryBus struct {
	mu       sync.RWMutex
	nextID   int
	entity   []entitySubscription
	movement []movementSubscription
}

// NewInMemoryBus constructs an empty bus.
func NewInMemoryBus() *InMemoryBus {
	return &InMemoryBus{}
}

var _ Bus = (*InMemoryBus)(nil)

// SubscribeEntityChanged registers a handler for entity-changed events.
func (b *InMemoryBus) SubscribeEntityChanged(handler func(context.Context, EntityChanged)) Unsubscribe {
	if handler == nil {
		return func() {}
	}
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.entity = append(b.entity, entitySubscription{id: id, handler: handler})
	b.mu.Unlock()
	return func() {
		b.mu.Lock()
		for i, sub := range b.entity {
			if sub.id == id {
				b.entity = append(b.entity[:i], b.entity[i+1:]...)
				break
			}
		}
		b.mu.Unlock()
	}
}

// SubscribeStockMovement registers a handler for stock-movement events.
func (b *InMemoryBus) SubscribeStockMovement(handler func(context.Context, StockMovementOccurred)) Unsubscribe {
	if handler == nil {
		return func() {}
	}
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.movement = append(b.movement, movementSubscription{id: id, handler: handler})
	b.mu.Unlock()
	return func() {
		b.mu.Lock()
		for i, sub := range b.movement {
			if sub.id == id {
				b.movement = append(b.movement[:i], b.movement[i+1:]...)
				break
			}
		}
		b.mu.Unlock()
	}
}

// PublishEntityChanged dispatches the event synchronously to all handlers.
func (b *InMemoryBus) PublishEntityChanged(ctx context.Context, event EntityChanged) {
	b.mu.RLock()
	handlers := make([]func(context.Context, EntityChanged), len(b.entity))
	for i, sub := range b.entity {
		handlers[i] = sub.handler
	}
	b.mu.RUnlock()
	for _, handler := range handlers {
		handler(ctx, event)
	}
}

// PublishStockMovement dispatches the event synchronously to all handlers.
func (b *InMemoryBus) PublishStockMovement(ctx context.Context, event StockMovementOccurred) {
	b.mu.RLock()
	handlers := make([]func(context.Context, StockMovementOccurred), len(b.movement))
	for i, sub := range b.movement {
		handlers[i] = sub.handler
	}
	b.mu.RUnlock()
	for _, handler := range handlers {
		handler(ctx, event)
	}
}
