package stock

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocationService_Reserve(t *testing.T) {
	svc := NewAllocationService()
	productID := uuid.New()

	t.Run("applies the full plan against the records", func(t *testing.T) {
		warehouse := newTestRecord(t, productID, 5)
		outlet := newTestRecord(t, productID, 3)

		applied, err := svc.Reserve(productID, []*StockRecord{warehouse, outlet}, decimal.NewFromInt(7))
		require.NoError(t, err)
		require.Len(t, applied, 2)

		assert.True(t, warehouse.Quantity.IsZero())
		assert.True(t, outlet.Quantity.Equal(decimal.NewFromInt(1)))
	})

	t.Run("shortfall leaves balances untouched", func(t *testing.T) {
		warehouse := newTestRecord(t, productID, 5)
		outlet := newTestRecord(t, productID, 3)

		_, err := svc.Reserve(productID, []*StockRecord{warehouse, outlet}, decimal.NewFromInt(10))
		require.Error(t, err)
		assert.True(t, IsInsufficientStock(err))

		assert.True(t, warehouse.Quantity.Equal(decimal.NewFromInt(5)))
		assert.True(t, outlet.Quantity.Equal(decimal.NewFromInt(3)))
	})
}

func TestAllocationService_Release(t *testing.T) {
	svc := NewAllocationService()
	productID := uuid.New()

	t.Run("applies the restock plan", func(t *testing.T) {
		warehouse := newTestRecord(t, productID, 8)
		outlet := newTestRecord(t, productID, 2)

		applied, err := svc.Release([]*StockRecord{warehouse, outlet}, decimal.NewFromInt(5))
		require.NoError(t, err)
		require.Len(t, applied, 1)
		assert.True(t, outlet.Quantity.Equal(decimal.NewFromInt(7)))
		assert.True(t, warehouse.Quantity.Equal(decimal.NewFromInt(8)))
	})
}

func TestAllocationService_Transfer(t *testing.T) {
	svc := NewAllocationService()
	productID := uuid.New()

	t.Run("moves quantity between locations", func(t *testing.T) {
		from := newTestRecord(t, productID, 10)
		to := newTestRecord(t, productID, 1)

		require.NoError(t, svc.Transfer(from, to, decimal.NewFromInt(4)))
		assert.True(t, from.Quantity.Equal(decimal.NewFromInt(6)))
		assert.True(t, to.Quantity.Equal(decimal.NewFromInt(5)))
	})

	t.Run("insufficient source rejected", func(t *testing.T) {
		from := newTestRecord(t, productID, 2)
		to := newTestRecord(t, productID, 0)

		err := svc.Transfer(from, to, decimal.NewFromInt(5))
		require.Error(t, err)
		assert.True(t, from.Quantity.Equal(decimal.NewFromInt(2)))
		assert.True(t, to.Quantity.IsZero())
	})
}
