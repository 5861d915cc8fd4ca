package order

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/domain/stock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memEnv is an in-memory database for order lifecycle tests with
// snapshot-rollback transactions
type memEnv struct {
	orders  map[uuid.UUID]*order.Order
	stocks  map[uuid.UUID]*stock.StockRecord
	ledgers map[uuid.UUID]*customer.CustomerLedger
}

func newMemEnv() *memEnv {
	return &memEnv{
		orders:  make(map[uuid.UUID]*order.Order),
		stocks:  make(map[uuid.UUID]*stock.StockRecord),
		ledgers: make(map[uuid.UUID]*customer.CustomerLedger),
	}
}

func (e *memEnv) stockTotal(productID uuid.UUID) decimal.Decimal {
	sum := decimal.Zero
	for _, r := range e.stocks {
		if r.ProductID == productID {
			sum = sum.Add(r.Quantity)
		}
	}
	return sum
}

type memScope struct {
	env *memEnv
}

func cloneMap[K comparable, V any](src map[K]*V) map[K]*V {
	out := make(map[K]*V, len(src))
	for k, v := range src {
		clone := *v
		out[k] = &clone
	}
	return out
}

func (s *memScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	orders := cloneMap(s.env.orders)
	stocks := cloneMap(s.env.stocks)
	ledgers := cloneMap(s.env.ledgers)

	if err := fn(&memRepos{env: s.env}); err != nil {
		s.env.orders = orders
		s.env.stocks = stocks
		s.env.ledgers = ledgers
		return err
	}
	return nil
}

type memRepos struct {
	env *memEnv
}

func (r *memRepos) OrderRepo() order.Repository     { return &memOrderRepo{env: r.env} }
func (r *memRepos) StockRepo() stock.Repository     { return &memStockRepo{env: r.env} }
func (r *memRepos) LedgerRepo() customer.Repository { return &memLedgerRepo{env: r.env} }

type memOrderRepo struct {
	env *memEnv
}

func (m *memOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*order.Order, error) {
	o, ok := m.env.orders[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := *o
	return &clone, nil
}

func (m *memOrderRepo) FindAll(_ context.Context, _ shared.Filter) ([]order.Order, error) {
	out := make([]order.Order, 0, len(m.env.orders))
	for _, o := range m.env.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (m *memOrderRepo) Save(_ context.Context, o *order.Order) error {
	clone := *o
	m.env.orders[o.ID] = &clone
	return nil
}

func (m *memOrderRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(m.env.orders)), nil
}

func (m *memOrderRepo) FindByOrderNumber(_ context.Context, orderNumber string) (*order.Order, error) {
	for _, o := range m.env.orders {
		if o.OrderNumber == orderNumber {
			clone := *o
			return &clone, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *memOrderRepo) FindByCustomer(_ context.Context, customerID uuid.UUID, filter shared.Filter) (*shared.Paginated[*order.Order], error) {
	var out []*order.Order
	for _, o := range m.env.orders {
		if o.CustomerID == customerID {
			clone := *o
			out = append(out, &clone)
		}
	}
	page := shared.NewPaginated(out, int64(len(out)), filter.Page, filter.PageSize)
	return &page, nil
}

func (m *memOrderRepo) FindByStatus(_ context.Context, status order.OrderStatus, filter shared.Filter) (*shared.Paginated[*order.Order], error) {
	var out []*order.Order
	for _, o := range m.env.orders {
		if o.Status == status {
			clone := *o
			out = append(out, &clone)
		}
	}
	page := shared.NewPaginated(out, int64(len(out)), filter.Page, filter.PageSize)
	return &page, nil
}

func (m *memOrderRepo) SaveWithLock(_ context.Context, o *order.Order) error {
	stored, ok := m.env.orders[o.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.Version != o.Version-1 {
		return shared.ErrConcurrencyConflict
	}
	clone := *o
	m.env.orders[o.ID] = &clone
	return nil
}

var _ order.Repository = (*memOrderRepo)(nil)

type memStockRepo struct {
	env *memEnv
}

func (m *memStockRepo) FindByID(_ context.Context, id uuid.UUID) (*stock.StockRecord, error) {
	r, ok := m.env.stocks[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := *r
	return &clone, nil
}

func (m *memStockRepo) FindAll(_ context.Context, _ shared.Filter) ([]stock.StockRecord, error) {
	out := make([]stock.StockRecord, 0, len(m.env.stocks))
	for _, r := range m.env.stocks {
		out = append(out, *r)
	}
	return out, nil
}

func (m *memStockRepo) Save(_ context.Context, record *stock.StockRecord) error {
	clone := *record
	m.env.stocks[record.ID] = &clone
	return nil
}

func (m *memStockRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(m.env.stocks)), nil
}

func (m *memStockRepo) FindByProduct(_ context.Context, productID uuid.UUID) ([]*stock.StockRecord, error) {
	var out []*stock.StockRecord
	for _, r := range m.env.stocks {
		if r.ProductID == productID {
			clone := *r
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (m *memStockRepo) FindByProductAndLocation(_ context.Context, productID, locationID uuid.UUID) (*stock.StockRecord, error) {
	for _, r := range m.env.stocks {
		if r.ProductID == productID && r.LocationID == locationID {
			clone := *r
			return &clone, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *memStockRepo) GetOrCreate(ctx context.Context, productID, locationID uuid.UUID) (*stock.StockRecord, error) {
	if r, err := m.FindByProductAndLocation(ctx, productID, locationID); err == nil {
		return r, nil
	}
	record, err := stock.NewStockRecord(productID, locationID)
	if err != nil {
		return nil, err
	}
	clone := *record
	m.env.stocks[record.ID] = &clone
	return record, nil
}

func (m *memStockRepo) SumAvailableByProduct(_ context.Context, productID uuid.UUID) (decimal.Decimal, error) {
	return m.env.stockTotal(productID), nil
}

func (m *memStockRepo) FindBelowThreshold(_ context.Context, filter shared.Filter) (*shared.Paginated[*stock.StockRecord], error) {
	var out []*stock.StockRecord
	for _, r := range m.env.stocks {
		if r.IsLowStock() {
			clone := *r
			out = append(out, &clone)
		}
	}
	page := shared.NewPaginated(out, int64(len(out)), filter.Page, filter.PageSize)
	return &page, nil
}

func (m *memStockRepo) SaveWithLock(_ context.Context, record *stock.StockRecord) error {
	stored, ok := m.env.stocks[record.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.Version != record.Version-1 {
		return shared.ErrConcurrencyConflict
	}
	clone := *record
	m.env.stocks[record.ID] = &clone
	return nil
}

var _ stock.Repository = (*memStockRepo)(nil)

type memLedgerRepo struct {
	env *memEnv
}

func (m *memLedgerRepo) FindByID(_ context.Context, id uuid.UUID) (*customer.CustomerLedger, error) {
	l, ok := m.env.ledgers[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := *l
	return &clone, nil
}

func (m *memLedgerRepo) FindAll(_ context.Context, _ shared.Filter) ([]customer.CustomerLedger, error) {
	out := make([]customer.CustomerLedger, 0, len(m.env.ledgers))
	for _, l := range m.env.ledgers {
		out = append(out, *l)
	}
	return out, nil
}

func (m *memLedgerRepo) Save(_ context.Context, ledger *customer.CustomerLedger) error {
	clone := *ledger
	m.env.ledgers[ledger.ID] = &clone
	return nil
}

func (m *memLedgerRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(m.env.ledgers)), nil
}

func (m *memLedgerRepo) FindByUser(_ context.Context, userID uuid.UUID) (*customer.CustomerLedger, error) {
	for _, l := range m.env.ledgers {
		if l.UserID == userID {
			clone := *l
			return &clone, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *memLedgerRepo) GetOrCreate(ctx context.Context, userID uuid.UUID) (*customer.CustomerLedger, error) {
	if l, err := m.FindByUser(ctx, userID); err == nil {
		return l, nil
	}
	ledger, err := customer.NewCustomerLedger(userID)
	if err != nil {
		return nil, err
	}
	clone := *ledger
	m.env.ledgers[ledger.ID] = &clone
	return ledger, nil
}

func (m *memLedgerRepo) SaveWithLock(_ context.Context, ledger *customer.CustomerLedger) error {
	stored, ok := m.env.ledgers[ledger.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.Version != ledger.Version-1 {
		return shared.ErrConcurrencyConflict
	}
	clone := *ledger
	m.env.ledgers[ledger.ID] = &clone
	return nil
}

var _ customer.Repository = (*memLedgerRepo)(nil)

// placedOrder seeds the env with a placed order, its stock deductions already
// applied, and the ledger credited with the order total
func placedOrder(t *testing.T, env *memEnv) (*order.Order, uuid.UUID) {
	t.Helper()

	customerID := uuid.New()
	productID := uuid.New()

	address, err := valueobject.NewAddress("Nguyen Van A", "+84901234567", "12 Ly Thuong Kiet", "Hanoi", "Hoan Kiem")
	require.NoError(t, err)

	o, err := order.NewOrder(order.GenerateOrderNumber(), customerID, address, "cod")
	require.NoError(t, err)
	require.NoError(t, o.AddLine(productID, "Ceramic Mug", decimal.NewFromInt(2), valueobject.NewMoneyVNDFromInt(1000000), valueobject.ZeroVND()))
	require.NoError(t, o.ApplyAmounts(
		valueobject.NewMoneyVNDFromInt(2000000),
		valueobject.NewMoneyVNDFromInt(200000),
		valueobject.ZeroVND(),
		valueobject.ZeroVND(),
		valueobject.NewMoneyVNDFromInt(2200000),
	))
	env.orders[o.ID] = o

	// Remaining stock after the 2-unit reservation.
	record, err := stock.NewStockRecord(productID, uuid.New())
	require.NoError(t, err)
	record.Quantity = decimal.NewFromInt(3)
	env.stocks[record.ID] = record

	ledger, err := customer.NewCustomerLedger(customerID)
	require.NoError(t, err)
	require.NoError(t, ledger.RecordPurchase(valueobject.NewMoneyVNDFromInt(2200000)))
	env.ledgers[ledger.ID] = ledger

	return o, productID
}

func newOrderFixture(env *memEnv) *OrderService {
	return NewOrderService(&memScope{env: env}, &memOrderRepo{env: env}, zap.NewNop())
}

func TestOrderService_Transitions(t *testing.T) {
	ctx := context.Background()

	t.Run("full lifecycle to delivered", func(t *testing.T) {
		env := newMemEnv()
		o, _ := placedOrder(t, env)
		svc := newOrderFixture(env)

		resp, err := svc.Confirm(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, "CONFIRMED", resp.Status)

		resp, err = svc.StartProcessing(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, "PROCESSING", resp.Status)

		resp, err = svc.Ship(ctx, o.ID, ShipOrderRequest{})
		require.NoError(t, err)
		assert.Equal(t, "SHIPPED", resp.Status)
		assert.NotEmpty(t, resp.TrackingNumber)

		resp, err = svc.Deliver(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, "DELIVERED", resp.Status)
		assert.Equal(t, "PAID", resp.PaymentStatus)
	})

	t.Run("illegal transition surfaces and persists nothing", func(t *testing.T) {
		env := newMemEnv()
		o, _ := placedOrder(t, env)
		svc := newOrderFixture(env)

		_, err := svc.Deliver(ctx, o.ID)
		require.Error(t, err)

		stored := env.orders[o.ID]
		assert.Equal(t, order.OrderStatusPending, stored.Status)
	})

	t.Run("unknown order not found", func(t *testing.T) {
		env := newMemEnv()
		svc := newOrderFixture(env)
		_, err := svc.Confirm(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestOrderService_Cancel(t *testing.T) {
	ctx := context.Background()

	t.Run("restores stock and reverses the ledger", func(t *testing.T) {
		env := newMemEnv()
		o, productID := placedOrder(t, env)
		svc := newOrderFixture(env)

		resp, err := svc.Cancel(ctx, o.ID, CancelOrderRequest{Reason: "changed my mind"})
		require.NoError(t, err)
		assert.Equal(t, "CANCELLED", resp.Status)
		assert.NotNil(t, resp.CancelledAt)
		assert.Equal(t, "changed my mind", resp.CancelReason)

		// The 2 reserved units flow back: 3 + 2 = 5.
		assert.True(t, env.stockTotal(productID).Equal(decimal.NewFromInt(5)))

		// Ledger reversed to zero, tier re-derived.
		ledger, err := (&memLedgerRepo{env: env}).FindByUser(ctx, o.CustomerID)
		require.NoError(t, err)
		assert.True(t, ledger.TotalPurchased.IsZero())
		assert.Equal(t, customer.TierStandard, ledger.Tier)
	})

	t.Run("cancel after shipping rejected with everything intact", func(t *testing.T) {
		env := newMemEnv()
		o, productID := placedOrder(t, env)
		svc := newOrderFixture(env)

		_, err := svc.Confirm(ctx, o.ID)
		require.NoError(t, err)
		_, err = svc.StartProcessing(ctx, o.ID)
		require.NoError(t, err)

		_, err = svc.Cancel(ctx, o.ID, CancelOrderRequest{Reason: "too late"})
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, order.ErrCodeIllegalTransition, domainErr.Code)

		assert.True(t, env.stockTotal(productID).Equal(decimal.NewFromInt(3)))
		assert.Equal(t, order.OrderStatusProcessing, env.orders[o.ID].Status)
	})

	t.Run("cancelling twice fails the second time", func(t *testing.T) {
		env := newMemEnv()
		o, productID := placedOrder(t, env)
		svc := newOrderFixture(env)

		_, err := svc.Cancel(ctx, o.ID, CancelOrderRequest{Reason: "first"})
		require.NoError(t, err)

		_, err = svc.Cancel(ctx, o.ID, CancelOrderRequest{Reason: "second"})
		require.Error(t, err)

		// Stock restored exactly once.
		assert.True(t, env.stockTotal(productID).Equal(decimal.NewFromInt(5)))
	})
}

func TestOrderService_Queries(t *testing.T) {
	ctx := context.Background()
	env := newMemEnv()
	o, _ := placedOrder(t, env)
	svc := newOrderFixture(env)

	t.Run("get by id and number", func(t *testing.T) {
		resp, err := svc.Get(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, o.OrderNumber, resp.OrderNumber)

		resp, err = svc.GetByNumber(ctx, o.OrderNumber)
		require.NoError(t, err)
		assert.Equal(t, o.ID, resp.ID)
	})

	t.Run("ownership enforced for customer reads", func(t *testing.T) {
		_, err := svc.GetForCustomer(ctx, o.CustomerID, o.ID)
		require.NoError(t, err)

		_, err = svc.GetForCustomer(ctx, uuid.New(), o.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("list by customer", func(t *testing.T) {
		page, err := svc.ListByCustomer(ctx, o.CustomerID, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Equal(t, int64(1), page.Total)
	})
}

type recordingStatusNotifier struct {
	notifications []StatusChangeNotification
	err           error
}

func (r *recordingStatusNotifier) NotifyOrderStatusChanged(_ context.Context, n StatusChangeNotification) error {
	r.notifications = append(r.notifications, n)
	return r.err
}

func TestOrderService_StatusNotifications(t *testing.T) {
	ctx := context.Background()

	t.Run("transitions and cancellation notify", func(t *testing.T) {
		env := newMemEnv()
		o, _ := placedOrder(t, env)
		notifier := &recordingStatusNotifier{}
		svc := NewOrderService(&memScope{env: env}, &memOrderRepo{env: env}, zap.NewNop(),
			WithStatusNotifier(notifier))

		_, err := svc.Confirm(ctx, o.ID)
		require.NoError(t, err)
		_, err = svc.Cancel(ctx, o.ID, CancelOrderRequest{Reason: "changed my mind"})
		require.NoError(t, err)

		require.Len(t, notifier.notifications, 2)
		assert.Equal(t, "PENDING", notifier.notifications[0].FromStatus)
		assert.Equal(t, "CONFIRMED", notifier.notifications[0].ToStatus)
		assert.Equal(t, "CONFIRMED", notifier.notifications[1].FromStatus)
		assert.Equal(t, "CANCELLED", notifier.notifications[1].ToStatus)
		assert.Equal(t, o.OrderNumber, notifier.notifications[0].OrderNumber)
		assert.Equal(t, o.CustomerID.String(), notifier.notifications[0].CustomerID)
	})

	t.Run("rejected transition does not notify", func(t *testing.T) {
		env := newMemEnv()
		o, _ := placedOrder(t, env)
		notifier := &recordingStatusNotifier{}
		svc := NewOrderService(&memScope{env: env}, &memOrderRepo{env: env}, zap.NewNop(),
			WithStatusNotifier(notifier))

		_, err := svc.Deliver(ctx, o.ID)
		require.Error(t, err)
		assert.Empty(t, notifier.notifications)
	})

	t.Run("notifier failure does not affect the transition", func(t *testing.T) {
		env := newMemEnv()
		o, _ := placedOrder(t, env)
		notifier := &recordingStatusNotifier{err: errors.New("smtp down")}
		svc := NewOrderService(&memScope{env: env}, &memOrderRepo{env: env}, zap.NewNop(),
			WithStatusNotifier(notifier))

		resp, err := svc.Confirm(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, "CONFIRMED", resp.Status)
	})
}

type recordingInvalidator struct {
	invalidated []uuid.UUID
}

func (r *recordingInvalidator) Invalidate(_ context.Context, productID uuid.UUID) error {
	r.invalidated = append(r.invalidated, productID)
	return nil
}

func TestOrderService_CancelInvalidatesAvailability(t *testing.T) {
	ctx := context.Background()

	t.Run("cancellation invalidates every restored product", func(t *testing.T) {
		env := newMemEnv()
		o, productID := placedOrder(t, env)
		invalidator := &recordingInvalidator{}
		svc := NewOrderService(&memScope{env: env}, &memOrderRepo{env: env}, zap.NewNop(),
			WithAvailabilityInvalidator(invalidator))

		_, err := svc.Cancel(ctx, o.ID, CancelOrderRequest{Reason: "changed my mind"})
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{productID}, invalidator.invalidated)
	})

	t.Run("rejected cancellation invalidates nothing", func(t *testing.T) {
		env := newMemEnv()
		o, _ := placedOrder(t, env)
		invalidator := &recordingInvalidator{}
		svc := NewOrderService(&memScope{env: env}, &memOrderRepo{env: env}, zap.NewNop(),
			WithAvailabilityInvalidator(invalidator))

		_, err := svc.Confirm(ctx, o.ID)
		require.NoError(t, err)
		_, err = svc.StartProcessing(ctx, o.ID)
		require.NoError(t, err)

		_, err = svc.Cancel(ctx, o.ID, CancelOrderRequest{Reason: "too late"})
		require.Error(t, err)
		assert.Empty(t, invalidator.invalidated)
	})
}
