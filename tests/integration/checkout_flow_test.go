package integration

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	cartapp "github.com/storefront/backend/internal/application/cart"
	checkoutapp "github.com/storefront/backend/internal/application/checkout"
	orderapp "github.com/storefront/backend/internal/application/order"
	stockapp "github.com/storefront/backend/internal/application/stock"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence"
)

type services struct {
	stock    *stockapp.StockService
	cart     *cartapp.CartService
	order    *orderapp.OrderService
	checkout *checkoutapp.CheckoutService
}

func newServices(db *gorm.DB) *services {
	log := zap.NewNop()

	productRepo := persistence.NewGormProductRepository(db)
	stockRepo := persistence.NewGormStockRepository(db)
	cartRepo := persistence.NewGormCartRepository(db)
	orderRepo := persistence.NewGormOrderRepository(db)

	stockScope := persistence.NewGormStockTransactionScope(db)
	orderScope := persistence.NewGormOrderTransactionScope(db)
	checkoutScope := persistence.NewGormCheckoutTransactionScope(db)

	return &services{
		stock:    stockapp.NewStockService(stockScope, stockRepo, log),
		cart:     cartapp.NewCartService(cartRepo, productRepo, stockRepo, log),
		order:    orderapp.NewOrderService(orderScope, orderRepo, log),
		checkout: checkoutapp.NewCheckoutService(checkoutScope, cartRepo, productRepo, stockRepo, log),
	}
}

func placeOrderRequest() checkoutapp.PlaceOrderRequest {
	return checkoutapp.PlaceOrderRequest{
		Address: checkoutapp.AddressRequest{
			Recipient: "Nguyen Van A",
			Phone:     "+84901234567",
			Line1:     "12 Hang Bac",
			City:      "Hanoi",
			Region:    "Hanoi",
		},
		PaymentMethod: "cod",
	}
}

func (tdb *TestDB) totalStock(t *testing.T, productID uuid.UUID) decimal.Decimal {
	t.Helper()
	var total decimal.Decimal
	err := tdb.DB.Raw(
		"SELECT COALESCE(SUM(quantity), 0) FROM stock_records WHERE product_id = ?",
		productID,
	).Scan(&total).Error
	require.NoError(t, err)
	return total
}

func (tdb *TestDB) cartLineCount(t *testing.T, userID uuid.UUID) int64 {
	t.Helper()
	var count int64
	err := tdb.DB.Raw(
		"SELECT COUNT(*) FROM cart_lines WHERE user_id = ?", userID,
	).Scan(&count).Error
	require.NoError(t, err)
	return count
}

func (tdb *TestDB) ledgerTotal(t *testing.T, userID uuid.UUID) decimal.Decimal {
	t.Helper()
	var total decimal.Decimal
	err := tdb.DB.Raw(
		"SELECT COALESCE(SUM(total_purchased), 0) FROM customer_ledgers WHERE user_id = ?",
		userID,
	).Scan(&total).Error
	require.NoError(t, err)
	return total
}

func TestCheckoutFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tdb := NewTestDB(t)
	svc := newServices(tdb.DB)
	ctx := context.Background()

	userID := uuid.New()
	productID := tdb.CreateTestProduct("MUG-01", 100_000)
	tdb.CreateTestStock(productID, 10)
	tdb.CreateTestCartLine(userID, productID, 2)

	order, err := svc.checkout.PlaceOrder(ctx, userID, placeOrderRequest())
	require.NoError(t, err)

	assert.Equal(t, "PENDING", order.Status)
	assert.NotEmpty(t, order.OrderNumber)
	require.Len(t, order.Lines, 1)
	assert.True(t, order.Lines[0].Quantity.Equal(decimal.NewFromInt(2)))

	// Stock reserved, cart cleared, spend recorded
	assert.True(t, tdb.totalStock(t, productID).Equal(decimal.NewFromInt(8)),
		"stock should drop from 10 to 8")
	assert.Zero(t, tdb.cartLineCount(t, userID))
	assert.True(t, tdb.ledgerTotal(t, userID).Equal(order.Total.Amount()),
		"ledger should hold the order total")

	// Walk the order through its lifecycle
	confirmed, err := svc.order.Confirm(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "CONFIRMED", confirmed.Status)

	processing, err := svc.order.StartProcessing(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "PROCESSING", processing.Status)

	shipped, err := svc.order.Ship(ctx, order.ID, orderapp.ShipOrderRequest{TrackingNumber: "VN123456789"})
	require.NoError(t, err)
	assert.Equal(t, "SHIPPED", shipped.Status)
	assert.Equal(t, "VN123456789", shipped.TrackingNumber)

	delivered, err := svc.order.Deliver(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "DELIVERED", delivered.Status)
	assert.NotNil(t, delivered.DeliveredAt)

	// Delivered orders cannot be cancelled
	_, err = svc.order.Cancel(ctx, order.ID, orderapp.CancelOrderRequest{Reason: "too late"})
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ILLEGAL_STATE_TRANSITION", domainErr.Code)
}

func TestCheckoutCancellationRestoresStockAndLedger(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tdb := NewTestDB(t)
	svc := newServices(tdb.DB)
	ctx := context.Background()

	userID := uuid.New()
	productID := tdb.CreateTestProduct("TEE-01", 250_000)
	tdb.CreateTestStock(productID, 5)
	tdb.CreateTestCartLine(userID, productID, 3)

	order, err := svc.checkout.PlaceOrder(ctx, userID, placeOrderRequest())
	require.NoError(t, err)
	require.True(t, tdb.totalStock(t, productID).Equal(decimal.NewFromInt(2)))

	cancelled, err := svc.order.Cancel(ctx, order.ID, orderapp.CancelOrderRequest{Reason: "changed my mind"})
	require.NoError(t, err)
	assert.Equal(t, "CANCELLED", cancelled.Status)
	assert.Equal(t, "changed my mind", cancelled.CancelReason)
	assert.NotNil(t, cancelled.CancelledAt)

	// Stock back and the spend reversed
	assert.True(t, tdb.totalStock(t, productID).Equal(decimal.NewFromInt(5)),
		"cancellation should restore the reserved quantity")
	assert.True(t, tdb.ledgerTotal(t, userID).IsZero(),
		"cancellation should reverse the recorded spend")
}

func TestCheckoutInsufficientStockRollsBackEverything(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tdb := NewTestDB(t)
	svc := newServices(tdb.DB)
	ctx := context.Background()

	userID := uuid.New()
	productID := tdb.CreateTestProduct("HAT-01", 150_000)
	tdb.CreateTestStock(productID, 2)
	tdb.CreateTestCartLine(userID, productID, 4)

	_, err := svc.checkout.PlaceOrder(ctx, userID, placeOrderRequest())
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INSUFFICIENT_STOCK", domainErr.Code)

	// Nothing may have moved
	assert.True(t, tdb.totalStock(t, productID).Equal(decimal.NewFromInt(2)))
	assert.Equal(t, int64(1), tdb.cartLineCount(t, userID), "cart must survive a failed checkout")
	assert.True(t, tdb.ledgerTotal(t, userID).IsZero())

	var orderCount int64
	require.NoError(t, tdb.DB.Raw("SELECT COUNT(*) FROM orders").Scan(&orderCount).Error)
	assert.Zero(t, orderCount, "no order may be persisted on shortfall")
}

func TestCheckoutEmptyCart(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tdb := NewTestDB(t)
	svc := newServices(tdb.DB)

	_, err := svc.checkout.PlaceOrder(context.Background(), uuid.New(), placeOrderRequest())
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "EMPTY_CART", domainErr.Code)
}
