package order

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAddress(t *testing.T) valueobject.Address {
	t.Helper()
	address, err := valueobject.NewAddress("Nguyen Van A", "+84901234567", "12 Ly Thuong Kiet", "Hanoi", "Hoan Kiem")
	require.NoError(t, err)
	return address
}

func newTestOrder(t *testing.T) *Order {
	t.Helper()
	o, err := NewOrder(GenerateOrderNumber(), uuid.New(), newTestAddress(t), "cod")
	require.NoError(t, err)
	require.NoError(t, o.AddLine(uuid.New(), "Ceramic Mug", decimal.NewFromInt(2), valueobject.NewMoneyVNDFromInt(1000000), valueobject.ZeroVND()))
	return o
}

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{OrderStatusPending, OrderStatusConfirmed, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusShipped, false},
		{OrderStatusConfirmed, OrderStatusProcessing, true},
		{OrderStatusConfirmed, OrderStatusCancelled, true},
		{OrderStatusConfirmed, OrderStatusDelivered, false},
		{OrderStatusProcessing, OrderStatusShipped, true},
		{OrderStatusProcessing, OrderStatusCancelled, false},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusShipped, OrderStatusCancelled, false},
		{OrderStatusDelivered, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestOrderStatus_IsTerminal(t *testing.T) {
	assert.True(t, OrderStatusDelivered.IsTerminal())
	assert.True(t, OrderStatusCancelled.IsTerminal())
	assert.False(t, OrderStatusPending.IsTerminal())
	assert.False(t, OrderStatus("BOGUS").IsTerminal())
}

func TestGenerateOrderNumber(t *testing.T) {
	number := GenerateOrderNumber()
	assert.True(t, strings.HasPrefix(number, "ORD-"))

	// Collisions within a run should be vanishingly rare.
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		seen[GenerateOrderNumber()] = true
	}
	assert.Greater(t, len(seen), 90)
}

func TestNewOrder(t *testing.T) {
	t.Run("starts pending and unpaid", func(t *testing.T) {
		o := newTestOrder(t)
		assert.Equal(t, OrderStatusPending, o.Status)
		assert.Equal(t, PaymentStatusUnpaid, o.PaymentStatus)
		assert.False(t, o.PlacedAt.IsZero())
	})

	t.Run("requires payment method", func(t *testing.T) {
		_, err := NewOrder(GenerateOrderNumber(), uuid.New(), newTestAddress(t), "")
		assert.Error(t, err)
	})

	t.Run("requires order number", func(t *testing.T) {
		_, err := NewOrder("", uuid.New(), newTestAddress(t), "cod")
		assert.Error(t, err)
	})
}

func TestOrder_ApplyAmounts(t *testing.T) {
	o := newTestOrder(t)

	t.Run("reconciling amounts accepted", func(t *testing.T) {
		err := o.ApplyAmounts(
			valueobject.NewMoneyVNDFromInt(2000000),
			valueobject.NewMoneyVNDFromInt(200000),
			valueobject.ZeroVND(),
			valueobject.ZeroVND(),
			valueobject.NewMoneyVNDFromInt(2200000),
		)
		require.NoError(t, err)
		assert.True(t, o.Total.Equal(valueobject.NewMoneyVNDFromInt(2200000)))
	})

	t.Run("total mismatch rejected", func(t *testing.T) {
		err := o.ApplyAmounts(
			valueobject.NewMoneyVNDFromInt(2000000),
			valueobject.NewMoneyVNDFromInt(200000),
			valueobject.ZeroVND(),
			valueobject.ZeroVND(),
			valueobject.NewMoneyVNDFromInt(999),
		)
		assert.Error(t, err)
	})

	t.Run("negative component rejected", func(t *testing.T) {
		err := o.ApplyAmounts(
			valueobject.NewMoneyVNDFromInt(-1),
			valueobject.ZeroVND(),
			valueobject.ZeroVND(),
			valueobject.ZeroVND(),
			valueobject.NewMoneyVNDFromInt(-1),
		)
		assert.Error(t, err)
	})
}

func TestOrder_Lifecycle(t *testing.T) {
	t.Run("happy path through delivery", func(t *testing.T) {
		o := newTestOrder(t)

		require.NoError(t, o.Confirm())
		require.NoError(t, o.StartProcessing())
		require.NoError(t, o.Ship(""))
		assert.NotEmpty(t, o.TrackingNumber)
		assert.NotNil(t, o.ShippedAt)

		require.NoError(t, o.Deliver())
		assert.NotNil(t, o.DeliveredAt)
		assert.Equal(t, PaymentStatusPaid, o.PaymentStatus)
	})

	t.Run("ship keeps a provided tracking number", func(t *testing.T) {
		o := newTestOrder(t)
		require.NoError(t, o.Confirm())
		require.NoError(t, o.StartProcessing())
		require.NoError(t, o.Ship("VN123456789"))
		assert.Equal(t, "VN123456789", o.TrackingNumber)
	})

	t.Run("illegal transition leaves state untouched", func(t *testing.T) {
		o := newTestOrder(t)

		err := o.Ship("")
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, ErrCodeIllegalTransition, domainErr.Code)
		assert.Equal(t, "PENDING", domainErr.Details["from"])
		assert.Equal(t, "SHIPPED", domainErr.Details["to"])

		assert.Equal(t, OrderStatusPending, o.Status)
		assert.Empty(t, o.TrackingNumber)
		assert.Nil(t, o.ShippedAt)
	})

	t.Run("confirm requires lines", func(t *testing.T) {
		o, err := NewOrder(GenerateOrderNumber(), uuid.New(), newTestAddress(t), "cod")
		require.NoError(t, err)
		assert.Error(t, o.Confirm())
	})

	t.Run("cancel from pending and confirmed only", func(t *testing.T) {
		o := newTestOrder(t)
		assert.True(t, o.CanCancel())
		require.NoError(t, o.Confirm())
		assert.True(t, o.CanCancel())

		require.NoError(t, o.Cancel("customer changed their mind"))
		assert.Equal(t, OrderStatusCancelled, o.Status)
		assert.NotNil(t, o.CancelledAt)
		assert.Equal(t, "customer changed their mind", o.CancelReason)

		// Terminal: nothing moves out of CANCELLED.
		assert.Error(t, o.Confirm())
		assert.Error(t, o.Deliver())
	})

	t.Run("cancel rejected once processing", func(t *testing.T) {
		o := newTestOrder(t)
		require.NoError(t, o.Confirm())
		require.NoError(t, o.StartProcessing())
		assert.False(t, o.CanCancel())
		assert.Error(t, o.Cancel("too late"))
	})

	t.Run("delivery marks cod orders paid exactly once", func(t *testing.T) {
		o := newTestOrder(t)
		o.MarkPaid()
		assert.Equal(t, PaymentStatusPaid, o.PaymentStatus)

		require.NoError(t, o.Confirm())
		require.NoError(t, o.StartProcessing())
		require.NoError(t, o.Ship(""))
		require.NoError(t, o.Deliver())
		assert.Equal(t, PaymentStatusPaid, o.PaymentStatus)
	})
}

func TestNewOrderLine(t *testing.T) {
	t.Run("computes line total", func(t *testing.T) {
		line, err := NewOrderLine(uuid.New(), uuid.New(), "Ceramic Mug", decimal.NewFromInt(3), valueobject.NewMoneyVNDFromInt(150000), valueobject.NewMoneyVNDFromInt(50000))
		require.NoError(t, err)
		assert.True(t, line.LineTotal.Equal(valueobject.NewMoneyVNDFromInt(400000)))
	})

	t.Run("discount cannot exceed the line amount", func(t *testing.T) {
		_, err := NewOrderLine(uuid.New(), uuid.New(), "Ceramic Mug", decimal.NewFromInt(1), valueobject.NewMoneyVNDFromInt(100), valueobject.NewMoneyVNDFromInt(200))
		assert.Error(t, err)
	})

	t.Run("requires product name", func(t *testing.T) {
		_, err := NewOrderLine(uuid.New(), uuid.New(), "", decimal.NewFromInt(1), valueobject.NewMoneyVNDFromInt(100), valueobject.ZeroVND())
		assert.Error(t, err)
	})
}
