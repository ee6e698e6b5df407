package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatusTransitions(t *testing.T) {
	allowed := []struct {
		from, to OrderStatus
	}{
		{OrderPending, OrderConfirmed},
		{OrderPending, OrderCancelled},
		{OrderConfirmed, OrderProcessing},
		{OrderConfirmed, OrderCancelled},
		{OrderProcessing, OrderShipped},
		{OrderProcessing, OrderCancelled},
		{OrderShipped, OrderDelivered},
		{OrderShipped, OrderCancelled},
		{OrderDelivered, OrderRefunded},
	}
	for _, tr := range allowed {
		assert.True(t, tr.from.CanTransitionTo(tr.to), "%s -> %s should be allowed", tr.from, tr.to)
	}

	forbidden := []struct {
		from, to OrderStatus
	}{
		{OrderDelivered, OrderProcessing},
		{OrderPending, OrderShipped},
		{OrderPending, OrderDelivered},
		{OrderCancelled, OrderConfirmed},
		{OrderRefunded, OrderPending},
		{OrderDelivered, OrderCancelled},
		{OrderConfirmed, OrderConfirmed},
	}
	for _, tr := range forbidden {
		assert.False(t, tr.from.CanTransitionTo(tr.to), "%s -> %s should be rejected", tr.from, tr.to)
	}
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, OrderCancelled.Terminal())
	assert.True(t, OrderRefunded.Terminal())
	assert.False(t, OrderPending.Terminal())
	assert.False(t, OrderDelivered.Terminal())
}

func TestEnterStatusStampsTimestampOnce(t *testing.T) {
	order := Order{Status: OrderPending}

	first := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	order.EnterStatus(OrderConfirmed, first)
	require.NotNil(t, order.ConfirmedAt)
	assert.Equal(t, first, *order.ConfirmedAt)

	// A later stamp attempt must not overwrite the original.
	order.EnterStatus(OrderConfirmed, first.Add(time.Hour))
	assert.Equal(t, first, *order.ConfirmedAt)

	order.EnterStatus(OrderProcessing, first.Add(2*time.Hour))
	require.NotNil(t, order.ProcessedAt)
	assert.Nil(t, order.ShippedAt)
	assert.Nil(t, order.DeliveredAt)
	assert.Nil(t, order.CancelledAt)
	assert.Nil(t, order.RefundedAt)
}

func TestStatusNotificationLookup(t *testing.T) {
	title, body, ok := StatusNotification(OrderShipped)
	require.True(t, ok)
	assert.Equal(t, "Order shipped", title)
	assert.Contains(t, body, "%s")

	_, _, ok = StatusNotification(OrderPending)
	assert.False(t, ok)
}
