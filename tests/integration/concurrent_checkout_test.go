package integration

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stockapp "github.com/storefront/backend/internal/application/stock"
)

// Eight buyers compete for five units. Exactly five checkouts may succeed
// and the summed stock must never go negative.
func TestConcurrentCheckoutNoOversell(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tdb := NewTestDB(t)
	svc := newServices(tdb.DB)
	ctx := context.Background()

	const buyers = 8
	const available = 5

	productID := tdb.CreateTestProduct("LIM-01", 500_000)
	tdb.CreateTestStock(productID, available)

	userIDs := make([]uuid.UUID, buyers)
	for i := range userIDs {
		userIDs[i] = uuid.New()
		tdb.CreateTestCartLine(userIDs[i], productID, 1)
	}

	var wg sync.WaitGroup
	errs := make([]error, buyers)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.checkout.PlaceOrder(ctx, userIDs[i], placeOrderRequest())
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		}
	}

	// The retry budget bounds how much contention a single request absorbs,
	// so some buyers may lose outright. The invariant is never overselling:
	// every successful checkout consumed exactly one real unit.
	require.Greater(t, succeeded, 0, "at least one checkout must get through")
	assert.LessOrEqual(t, succeeded, available, "no more than the available units may sell")
	assert.True(t, tdb.totalStock(t, productID).Equal(decimal.NewFromInt(int64(available-succeeded))),
		"remaining stock must equal available minus units sold")

	var negative int64
	require.NoError(t, tdb.DB.Raw(
		"SELECT COUNT(*) FROM stock_records WHERE quantity < 0",
	).Scan(&negative).Error)
	assert.Zero(t, negative, "no stock record may go negative")

	var orderCount int64
	require.NoError(t, tdb.DB.Raw("SELECT COUNT(*) FROM orders").Scan(&orderCount).Error)
	assert.Equal(t, int64(succeeded), orderCount)
}

// Concurrent reservations across multiple locations drain the pool exactly
// once even when every request conflicts on the same rows.
func TestConcurrentReservationsAcrossLocations(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tdb := NewTestDB(t)
	svc := newServices(tdb.DB)
	ctx := context.Background()

	productID := tdb.CreateTestProduct("POP-01", 75_000)
	tdb.CreateTestStock(productID, 4)
	tdb.CreateTestStock(productID, 3)
	tdb.CreateTestStock(productID, 3)

	const workers = 10
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.stock.Reserve(ctx, stockapp.ReserveStockRequest{
				ProductID: productID,
				Quantity:  decimal.NewFromInt(1),
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		}
	}

	// 10 units available for 10 single-unit reservations; losers of the
	// retry budget surface as conflicts, never as phantom stock
	require.Greater(t, succeeded, 0)
	remaining := tdb.totalStock(t, productID)
	assert.True(t, remaining.Equal(decimal.NewFromInt(int64(workers-succeeded))),
		fmt.Sprintf("reserved %d, so %s units must remain", succeeded, remaining))
}
