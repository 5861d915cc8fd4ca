package order

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/stock"
	"go.uber.org/zap"
)

const defaultMaxRetries = 3

// OrderService drives orders through their lifecycle. Transitions persist
// under the order's optimistic version; cancellation restores stock and
// reverses the customer ledger in the same transaction as the status change.
type OrderService struct {
	scope       TransactionScope
	readRepo    order.Repository
	allocator   *stock.AllocationService
	notifier    StatusNotifier
	invalidator AvailabilityInvalidator
	logger      *zap.Logger
	maxRetries  int
}

// OrderServiceOption configures an OrderService
type OrderServiceOption func(*OrderService)

// WithStatusNotifier enables status change notifications
func WithStatusNotifier(notifier StatusNotifier) OrderServiceOption {
	return func(s *OrderService) {
		s.notifier = notifier
	}
}

// WithAvailabilityInvalidator drops cached availability for every product
// whose stock a cancellation restores
func WithAvailabilityInvalidator(invalidator AvailabilityInvalidator) OrderServiceOption {
	return func(s *OrderService) {
		s.invalidator = invalidator
	}
}

// NewOrderService creates a new OrderService
func NewOrderService(scope TransactionScope, readRepo order.Repository, logger *zap.Logger, opts ...OrderServiceOption) *OrderService {
	s := &OrderService{
		scope:      scope,
		readRepo:   readRepo,
		allocator:  stock.NewAllocationService(),
		logger:     logger,
		maxRetries: defaultMaxRetries,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns an order by id
func (s *OrderService) Get(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	o, err := s.readRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// GetForCustomer returns an order by id, verifying it belongs to the
// customer. Orders of other customers surface as not found.
func (s *OrderService) GetForCustomer(ctx context.Context, customerID, orderID uuid.UUID) (*OrderResponse, error) {
	o, err := s.readRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.CustomerID != customerID {
		return nil, shared.ErrNotFound
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// GetByNumber returns an order by its order number
func (s *OrderService) GetByNumber(ctx context.Context, orderNumber string) (*OrderResponse, error) {
	o, err := s.readRepo.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// ListByCustomer returns a customer's orders, newest first
func (s *OrderService) ListByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) (*shared.Paginated[OrderResponse], error) {
	page, err := s.readRepo.FindByCustomer(ctx, customerID, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]OrderResponse, len(page.Items))
	for i, o := range page.Items {
		responses[i] = ToOrderResponse(o)
	}
	result := shared.NewPaginated(responses, page.Total, page.Page, page.PageSize)
	return &result, nil
}

// Confirm moves an order from PENDING to CONFIRMED
func (s *OrderService) Confirm(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	return s.applyTransition(ctx, orderID, func(o *order.Order) error {
		return o.Confirm()
	})
}

// StartProcessing moves an order from CONFIRMED to PROCESSING
func (s *OrderService) StartProcessing(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	return s.applyTransition(ctx, orderID, func(o *order.Order) error {
		return o.StartProcessing()
	})
}

// Ship moves an order to SHIPPED, generating a tracking number when the
// carrier has not assigned one
func (s *OrderService) Ship(ctx context.Context, orderID uuid.UUID, req ShipOrderRequest) (*OrderResponse, error) {
	return s.applyTransition(ctx, orderID, func(o *order.Order) error {
		return o.Ship(req.TrackingNumber)
	})
}

// Deliver moves an order to DELIVERED, settling cash-on-delivery payment
func (s *OrderService) Deliver(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	return s.applyTransition(ctx, orderID, func(o *order.Order) error {
		return o.Deliver()
	})
}

// Cancel cancels an order that has not entered fulfilment. In one
// transaction the status changes, every line's stock flows back to the
// locations with the smallest balances, and the order total is subtracted
// from the customer ledger with the loyalty tier re-derived.
func (s *OrderService) Cancel(ctx context.Context, orderID uuid.UUID, req CancelOrderRequest) (*OrderResponse, error) {
	var cancelled *order.Order
	var fromStatus order.OrderStatus

	err := s.withConflictRetry(ctx, func() error {
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			o, err := repos.OrderRepo().FindByID(ctx, orderID)
			if err != nil {
				return err
			}

			fromStatus = o.Status
			if err := o.Cancel(req.Reason); err != nil {
				return err
			}

			for _, line := range o.Lines {
				records, err := repos.StockRepo().FindByProduct(ctx, line.ProductID)
				if err != nil {
					return err
				}
				applied, err := s.allocator.Release(records, line.Quantity)
				if err != nil {
					return err
				}
				if err := saveReleased(ctx, repos.StockRepo(), records, applied); err != nil {
					return err
				}
			}

			ledger, err := repos.LedgerRepo().GetOrCreate(ctx, o.CustomerID)
			if err != nil {
				return err
			}
			if err := ledger.ReversePurchase(o.Total); err != nil {
				return err
			}
			if err := repos.LedgerRepo().SaveWithLock(ctx, ledger); err != nil {
				return err
			}

			if err := repos.OrderRepo().SaveWithLock(ctx, o); err != nil {
				return err
			}

			cancelled = o
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order cancelled",
		zap.String("order_number", cancelled.OrderNumber),
		zap.String("reason", req.Reason))

	s.invalidateAvailability(ctx, cancelled)
	s.notifyStatusChanged(ctx, cancelled, fromStatus)

	resp := ToOrderResponse(cancelled)
	return &resp, nil
}

// applyTransition loads the order, applies the domain transition and saves
// under the optimistic version, retrying transient conflicts
func (s *OrderService) applyTransition(ctx context.Context, orderID uuid.UUID, transition func(*order.Order) error) (*OrderResponse, error) {
	var updated *order.Order
	var fromStatus order.OrderStatus

	err := s.withConflictRetry(ctx, func() error {
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			o, err := repos.OrderRepo().FindByID(ctx, orderID)
			if err != nil {
				return err
			}
			fromStatus = o.Status
			if err := transition(o); err != nil {
				return err
			}
			if err := repos.OrderRepo().SaveWithLock(ctx, o); err != nil {
				return err
			}
			updated = o
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.notifyStatusChanged(ctx, updated, fromStatus)

	resp := ToOrderResponse(updated)
	return &resp, nil
}

// invalidateAvailability drops cached availability for every product the
// cancellation restored stock to. Runs after commit; failures are logged and
// the entry expires by TTL instead.
func (s *OrderService) invalidateAvailability(ctx context.Context, o *order.Order) {
	if s.invalidator == nil {
		return
	}
	for _, line := range o.Lines {
		if err := s.invalidator.Invalidate(ctx, line.ProductID); err != nil {
			s.logger.Warn("availability cache invalidation failed",
				zap.String("product_id", line.ProductID.String()),
				zap.Error(err))
		}
	}
}

// notifyStatusChanged fires the status notification after the transition has
// committed. Failures are logged and never surface to the caller.
func (s *OrderService) notifyStatusChanged(ctx context.Context, o *order.Order, from order.OrderStatus) {
	if s.notifier == nil {
		return
	}
	notification := StatusChangeNotification{
		OrderNumber: o.OrderNumber,
		CustomerID:  o.CustomerID.String(),
		FromStatus:  string(from),
		ToStatus:    string(o.Status),
	}
	if err := s.notifier.NotifyOrderStatusChanged(ctx, notification); err != nil {
		s.logger.Warn("status change notification failed",
			zap.String("order_number", o.OrderNumber),
			zap.Error(err))
	}
}

func (s *OrderService) withConflictRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if !errors.Is(err, shared.ErrConcurrencyConflict) {
			return err
		}
		s.logger.Debug("retrying after version conflict", zap.Int("attempt", attempt+1))

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
	return err
}

func saveReleased(ctx context.Context, repo stock.Repository, records []*stock.StockRecord, applied []stock.Restock) error {
	touched := make(map[uuid.UUID]bool, len(applied))
	for _, step := range applied {
		touched[step.RecordID] = true
	}
	for _, record := range records {
		if !touched[record.ID] {
			continue
		}
		if err := repo.SaveWithLock(ctx, record); err != nil {
			return err
		}
	}
	return nil
}
