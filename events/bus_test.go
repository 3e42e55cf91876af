package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPublishEntityChangedReachesAllSubscribers(t *testing.T) {
	bus := NewInMemoryBus()

	var order []string
	bus.SubscribeEntityChanged(func(_ context.Context, event EntityChanged) {
		order = append(order, "first:"+event.Label)
	})
	bus.SubscribeEntityChanged(func(_ context.Context, event EntityChanged) {
		order = append(order, "second:"+event.Label)
	})

	bus.PublishEntityChanged(context.Background(), EntityChanged{
		Subject: "products",
		Action:  "create",
		Label:   "Widget",
	})

	require.Equal(t, []string{"first:Widget", "second:Widget"}, order)
}

func TestPublishStockMovementCarriesPayload(t *testing.T) {
	bus := NewInMemoryBus()

	var got StockMovementOccurred
	bus.SubscribeStockMovement(func(_ context.Context, event StockMovementOccurred) {
		got = event
	})

	at := time.Date(2024, time.March, 10, 10, 0, 0, 0, time.UTC)
	bus.PublishStockMovement(context.Background(), StockMovementOccurred{
		ProductLabel: "Widget",
		Direction:    "in",
		Quantity:     "5",
		Actor:        "Ada",
		OccurredAt:   at,
	})

	require.Equal(t, "Widget", got.ProductLabel)
	require.Equal(t, "in", got.Direction)
	require.Equal(t, "5", got.Quantity)
	require.Equal(t, "Ada", got.Actor)
	require.True(t, got.OccurredAt.Equal(at))
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := NewInMemoryBus()

	var calls int
	unsubscribe := bus.SubscribeEntityChanged(func(context.Context, EntityChanged) {
		calls++
	})

	bus.PublishEntityChanged(context.Background(), EntityChanged{Subject: "products"})
	unsubscribe()
	bus.PublishEntityChanged(context.Background(), EntityChanged{Subject: "products"})
	// Unsubscribing twice is harmless.
	unsubscribe()

	require.Equal(t, 1, calls)
}

func TestPublishWithoutSubscribersIsNoop(t *testing.T) {
	bus := NewInMemoryBus()
	bus.PublishEntityChanged(context.Background(), EntityChanged{Subject: "products"})
	bus.PublishStockMovement(context.Background(), StockMovementOccurred{ProductLabel: "Widget"})
}

func TestSubscriptionsAreIndependentPerEventType(t *testing.T) {
	bus := NewInMemoryBus()

	var entityCalls, movementCalls int
	bus.SubscribeEntityChanged(func(context.Context, EntityChanged) { entityCalls++ })
	bus.SubscribeStockMovement(func(context.Context, StockMovementOccurred) { movementCalls++ })

	bus.PublishEntityChanged(context.Background(), EntityChanged{Subject: "products"})

	require.Equal(t, 1, entityCalls)
	require.Zero(t, movementCalls)
}
