package enums

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatusTitles(t *testing.T) {
	assert.Equal(t, "Order confirmed", OrderStatusConfirmed.Title())
	assert.Equal(t, "Ready to ship", OrderStatusReadyToShip.Title())
	assert.Equal(t, "Cancelled", OrderStatusCancelled.Title())
	assert.Equal(t, "Unknown", OrderStatus(42).Title())
}

func TestOrderStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		allowed  bool
	}{
		{OrderStatusConfirmed, OrderStatusPreparing, true},
		{OrderStatusConfirmed, OrderStatusShipping, true},
		{OrderStatusShipping, OrderStatusDelivered, true},
		{OrderStatusShipping, OrderStatusCancelled, true},
		{OrderStatusShipping, OrderStatusPreparing, false},
		{OrderStatusPreparing, OrderStatusPreparing, false},
		{OrderStatusDelivered, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusConfirmed, false},
		{OrderStatusConfirmed, OrderStatus(9), false},
	}
	for _, tt := range tests {
		assert.Equalf(t, tt.allowed, tt.from.CanTransitionTo(tt.to), "%d -> %d", tt.from, tt.to)
	}
}

func TestOrderStatusCustomerCancellable(t *testing.T) {
	for _, status := range OrderStatuses() {
		want := status <= OrderStatusReadyToShip
		assert.Equalf(t, want, status.IsCustomerCancellable(), "status %d", status)
	}
}

func TestParseOrderStatusAndPaymentType(t *testing.T) {
	status, err := ParseOrderStatus(4)
	require.NoError(t, err)
	require.Equal(t, OrderStatusShipping, status)

	_, err = ParseOrderStatus(0)
	require.Error(t, err)

	payment, err := ParsePaymentType(2)
	require.NoError(t, err)
	require.Equal(t, "VNPay / Credit card", payment.Title())

	_, err = ParsePaymentType(7)
	require.Error(t, err)
}

func TestParseActorRole(t *testing.T) {
	role, err := ParseActorRole("staff")
	require.NoError(t, err)
	require.True(t, role.IsBackOffice())
	require.False(t, ActorRoleCustomer.IsBackOffice())

	_, err = ParseActorRole("owner")
	require.Error(t, err)
}
