package checkout

import (
	"context"
	"errors"

	"github.com/google/uuid"
	apporder "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/domain/stock"
	"go.uber.org/zap"
)

const defaultMaxRetries = 3

// CheckoutService turns a cart into a placed order. Preconditions are
// checked up front in a fixed sequence; the placement itself runs in a
// single transaction so a failure at any step, including a stock shortfall
// on the last line, leaves no trace.
type CheckoutService struct {
	scope       TransactionScope
	cartRepo    cart.Repository
	productRepo catalog.Repository
	stockRepo   stock.Repository
	coupons     CouponValidator
	notifier    Notifier
	invalidator AvailabilityInvalidator
	allocator   *stock.AllocationService
	logger      *zap.Logger
	maxRetries  int
}

// CheckoutServiceOption configures a CheckoutService
type CheckoutServiceOption func(*CheckoutService)

// WithNotifier enables post-commit order notifications
func WithNotifier(notifier Notifier) CheckoutServiceOption {
	return func(s *CheckoutService) {
		s.notifier = notifier
	}
}

// WithCouponValidator enables coupon code support
func WithCouponValidator(coupons CouponValidator) CheckoutServiceOption {
	return func(s *CheckoutService) {
		s.coupons = coupons
	}
}

// WithAvailabilityInvalidator drops cached availability for every product
// whose stock a placement reserved
func WithAvailabilityInvalidator(invalidator AvailabilityInvalidator) CheckoutServiceOption {
	return func(s *CheckoutService) {
		s.invalidator = invalidator
	}
}

// NewCheckoutService creates a new CheckoutService
func NewCheckoutService(scope TransactionScope, cartRepo cart.Repository, productRepo catalog.Repository, stockRepo stock.Repository, logger *zap.Logger, opts ...CheckoutServiceOption) *CheckoutService {
	s := &CheckoutService{
		scope:       scope,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		stockRepo:   stockRepo,
		allocator:   stock.NewAllocationService(),
		logger:      logger,
		maxRetries:  defaultMaxRetries,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PlaceOrder places an order from the user's cart.
//
// Precondition failures short-circuit in a fixed sequence: empty cart, then
// product availability and aggregate stock sufficiency, then coupon
// validity. The transactional body then re-reads and re-prices the cart so
// the frozen line snapshots, the reservations and the amount breakdown all
// come from the same lines, reserves stock for every line through the
// allocation planner, records the purchase on the customer ledger and
// clears the cart. Any failure rolls the whole placement back. Cache
// invalidation and notification happen after commit and are best effort.
func (s *CheckoutService) PlaceOrder(ctx context.Context, userID uuid.UUID, req PlaceOrderRequest) (*apporder.OrderResponse, error) {
	address, err := req.Address.ToAddress()
	if err != nil {
		return nil, err
	}

	lines, err := s.cartRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	priced, err := s.priceCart(ctx, lines)
	if err != nil {
		return nil, err
	}
	if err := s.checkAggregateStock(ctx, lines); err != nil {
		return nil, err
	}

	discount := valueobject.ZeroVND()
	if req.CouponCode != "" {
		if s.coupons == nil {
			return nil, NewInvalidCouponError(req.CouponCode, "coupons are not supported")
		}
		subtotalOnly, err := cart.CalculateTotals(priced, discount)
		if err != nil {
			return nil, err
		}
		discount, err = s.coupons.Validate(ctx, req.CouponCode, subtotalOnly.Subtotal)
		if err != nil {
			return nil, err
		}
	}

	var placed *order.Order
	err = s.withConflictRetry(ctx, func() error {
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			// Re-read and re-price inside the transaction so a cart edit
			// racing the checkout cannot charge for stale quantities while
			// reserving the new ones.
			txLines, err := repos.CartRepo().FindByUser(ctx, userID)
			if err != nil {
				return err
			}
			if len(txLines) == 0 {
				return ErrEmptyCart
			}
			txPriced, err := s.priceCart(ctx, txLines)
			if err != nil {
				return err
			}
			totals, err := cart.CalculateTotals(txPriced, discount)
			if err != nil {
				return err
			}

			o, err := s.buildOrder(userID, address, req, txLines, txPriced, totals)
			if err != nil {
				return err
			}

			for _, line := range o.Lines {
				records, err := repos.StockRepo().FindByProduct(ctx, line.ProductID)
				if err != nil {
					return err
				}
				applied, err := s.allocator.Reserve(line.ProductID, records, line.Quantity)
				if err != nil {
					return err
				}
				if err := saveReserved(ctx, repos.StockRepo(), records, applied); err != nil {
					return err
				}
			}

			ledger, err := repos.LedgerRepo().GetOrCreate(ctx, userID)
			if err != nil {
				return err
			}
			if err := ledger.RecordPurchase(o.Total); err != nil {
				return err
			}
			if err := repos.LedgerRepo().SaveWithLock(ctx, ledger); err != nil {
				return err
			}

			o.AddDomainEvent(order.NewOrderPlacedEvent(o))
			if err := repos.OrderRepo().Save(ctx, o); err != nil {
				return err
			}

			if err := repos.CartRepo().Clear(ctx, userID); err != nil {
				return err
			}

			placed = o
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order placed",
		zap.String("order_number", placed.OrderNumber),
		zap.String("customer_id", userID.String()),
		zap.String("total", placed.Total.Amount().String()))

	s.invalidateAvailability(ctx, placed)
	s.notifyPlaced(ctx, placed)

	resp := apporder.ToOrderResponse(placed)
	return &resp, nil
}

// checkAggregateStock verifies every line can be covered by the summed
// availability across locations, so a shortfall is reported before the
// coupon collaborator is consulted. The in-transaction reservation stays
// the authoritative check.
func (s *CheckoutService) checkAggregateStock(ctx context.Context, lines []*cart.CartLine) error {
	for _, line := range lines {
		available, err := s.stockRepo.SumAvailableByProduct(ctx, line.ProductID)
		if err != nil {
			return err
		}
		if available.LessThan(line.Quantity) {
			return stock.NewInsufficientStockError(line.ProductID, line.Quantity, available)
		}
	}
	return nil
}

// invalidateAvailability drops cached availability for every product the
// placement reserved stock for. Runs after commit; failures are logged and
// the entry expires by TTL instead.
func (s *CheckoutService) invalidateAvailability(ctx context.Context, o *order.Order) {
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

// priceCart resolves products for the cart lines, rejecting missing or
// inactive products
func (s *CheckoutService) priceCart(ctx context.Context, lines []*cart.CartLine) ([]cart.PricedLine, error) {
	ids := make([]uuid.UUID, len(lines))
	for i, line := range lines {
		ids[i] = line.ProductID
	}
	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	priced := make([]cart.PricedLine, 0, len(lines))
	for _, line := range lines {
		product, ok := products[line.ProductID]
		if !ok || !product.IsAvailable() {
			return nil, catalog.NewProductUnavailableError(line.ProductID)
		}
		priced = append(priced, cart.PricedLine{
			ProductID:   product.ID.String(),
			ProductName: product.Name,
			Quantity:    line.Quantity,
			UnitPrice:   product.EffectivePrice(),
		})
	}
	return priced, nil
}

// buildOrder assembles the order aggregate with frozen line snapshots and
// the computed amount breakdown
func (s *CheckoutService) buildOrder(userID uuid.UUID, address valueobject.Address, req PlaceOrderRequest, txLines []*cart.CartLine, priced []cart.PricedLine, totals cart.Totals) (*order.Order, error) {
	o, err := order.NewOrder(order.GenerateOrderNumber(), userID, address, req.PaymentMethod)
	if err != nil {
		return nil, err
	}
	o.CouponCode = req.CouponCode

	pricedByProduct := make(map[string]cart.PricedLine, len(priced))
	for _, p := range priced {
		pricedByProduct[p.ProductID] = p
	}

	for _, line := range txLines {
		p, ok := pricedByProduct[line.ProductID.String()]
		if !ok {
			return nil, catalog.NewProductUnavailableError(line.ProductID)
		}
		if err := o.AddLine(line.ProductID, p.ProductName, line.Quantity, p.UnitPrice, valueobject.ZeroVND()); err != nil {
			return nil, err
		}
	}

	if err := o.ApplyAmounts(totals.Subtotal, totals.Tax, totals.Shipping, totals.Discount, totals.Total); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *CheckoutService) notifyPlaced(ctx context.Context, o *order.Order) {
	if s.notifier == nil {
		return
	}
	notification := PlacedOrderNotification{
		OrderNumber: o.OrderNumber,
		CustomerID:  o.CustomerID.String(),
		Total:       o.Total,
		LineCount:   len(o.Lines),
	}
	if err := s.notifier.NotifyOrderPlaced(ctx, notification); err != nil {
		s.logger.Warn("order notification failed",
			zap.String("order_number", o.OrderNumber),
			zap.Error(err))
	}
}

func (s *CheckoutService) withConflictRetry(ctx context.Context, fn func() error) error {
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

func saveReserved(ctx context.Context, repo stock.Repository, records []*stock.StockRecord, applied []stock.Deduction) error {
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
