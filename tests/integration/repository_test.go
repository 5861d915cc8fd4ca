package integration

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence"
)

func TestMain(m *testing.M) {
	code := m.Run()
	CleanupSharedContainer()
	os.Exit(code)
}

func TestStockRepositoryGetOrCreateIsRaceSafe(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tdb := NewSharedTestDB(t)
	repo := persistence.NewGormStockRepository(tdb.DB)
	ctx := context.Background()

	productID := tdb.CreateTestProduct("RACE-01", 10_000)
	locationID := uuid.New()

	const workers = 8
	var wg sync.WaitGroup
	ids := make([]uuid.UUID, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			record, err := repo.GetOrCreate(ctx, productID, locationID)
			if err == nil {
				ids[i] = record.ID
			}
		}(i)
	}
	wg.Wait()

	// Everyone must see the same row
	first := ids[0]
	require.NotEqual(t, uuid.Nil, first)
	for _, id := range ids[1:] {
		assert.Equal(t, first, id)
	}

	var count int64
	require.NoError(t, tdb.DB.Raw(
		"SELECT COUNT(*) FROM stock_records WHERE product_id = ? AND location_id = ?",
		productID, locationID,
	).Scan(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCartRepositoryUpsertMergesQuantities(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tdb := NewSharedTestDB(t)
	repo := persistence.NewGormCartRepository(tdb.DB)
	ctx := context.Background()

	userID := uuid.New()
	productID := tdb.CreateTestProduct("UPS-01", 20_000)

	line, err := cart.NewCartLine(userID, productID, decimal.NewFromInt(2))
	require.NoError(t, err)
	require.NoError(t, repo.Upsert(ctx, line))

	again, err := cart.NewCartLine(userID, productID, decimal.NewFromInt(3))
	require.NoError(t, err)
	require.NoError(t, repo.Upsert(ctx, again))

	lines, err := repo.FindByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.True(t, lines[0].Quantity.Equal(decimal.NewFromInt(5)),
		"duplicate adds must merge into one line")
}

func TestOrderRepositoryRoundTripsLines(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tdb := NewTestDB(t)
	svc := newServices(tdb.DB)
	repo := persistence.NewGormOrderRepository(tdb.DB)
	ctx := context.Background()

	userID := uuid.New()
	productID := tdb.CreateTestProduct("ORD-01", 90_000)
	tdb.CreateTestStock(productID, 10)
	tdb.CreateTestCartLine(userID, productID, 2)

	placed, err := svc.checkout.PlaceOrder(ctx, userID, placeOrderRequest())
	require.NoError(t, err)

	loaded, err := repo.FindByID(ctx, placed.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Lines, 1)
	assert.Equal(t, productID, loaded.Lines[0].ProductID)
	assert.Equal(t, placed.OrderNumber, loaded.OrderNumber)
	assert.True(t, loaded.Total.Equal(placed.Total))

	byNumber, err := repo.FindByOrderNumber(ctx, placed.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, loaded.ID, byNumber.ID)

	_, err = repo.FindByOrderNumber(ctx, "SO-DOES-NOT-EXIST")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
