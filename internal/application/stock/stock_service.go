package stock

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/stock"
	"go.uber.org/zap"
)

// defaultMaxRetries bounds how often a conflicted reservation is retried
// before the conflict surfaces to the caller
const defaultMaxRetries = 3

// StockService coordinates stock ledger operations. Mutations run inside a
// transaction scope and are serialized per record by optimistic locking;
// a version conflict retries the whole operation against fresh state.
type StockService struct {
	scope      TransactionScope
	readRepo   stock.Repository
	allocator  *stock.AllocationService
	cache      AvailabilityCache
	logger     *zap.Logger
	maxRetries int
}

// StockServiceOption configures a StockService
type StockServiceOption func(*StockService)

// WithAvailabilityCache enables availability caching
func WithAvailabilityCache(cache AvailabilityCache) StockServiceOption {
	return func(s *StockService) {
		s.cache = cache
	}
}

// WithMaxRetries overrides the conflict retry budget
func WithMaxRetries(retries int) StockServiceOption {
	return func(s *StockService) {
		if retries > 0 {
			s.maxRetries = retries
		}
	}
}

// NewStockService creates a new StockService
func NewStockService(scope TransactionScope, readRepo stock.Repository, logger *zap.Logger, opts ...StockServiceOption) *StockService {
	s := &StockService{
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

// Reserve deducts quantity units of a product across its locations, largest
// stockpile first. The reservation is all-or-nothing: a shortfall or a
// mid-plan failure leaves every balance as it was.
func (s *StockService) Reserve(ctx context.Context, req ReserveStockRequest) (*ReservationResponse, error) {
	var applied []stock.Deduction

	err := s.withConflictRetry(ctx, func() error {
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			records, err := repos.StockRepo().FindByProduct(ctx, req.ProductID)
			if err != nil {
				return err
			}

			applied, err = s.allocator.Reserve(req.ProductID, records, req.Quantity)
			if err != nil {
				return err
			}

			return saveRecords(ctx, repos.StockRepo(), records, deductionRecordIDs(applied))
		})
	})
	if err != nil {
		return nil, err
	}

	s.invalidateAvailability(ctx, req.ProductID)

	steps := make([]AllocationStep, len(applied))
	for i, step := range applied {
		steps[i] = AllocationStep{LocationID: step.LocationID, Quantity: step.Quantity}
	}
	return &ReservationResponse{ProductID: req.ProductID, Quantity: req.Quantity, Steps: steps}, nil
}

// Release returns quantity units of a product to its locations, smallest
// balance first, respecting high-threshold ceilings
func (s *StockService) Release(ctx context.Context, req ReleaseStockRequest) error {
	err := s.withConflictRetry(ctx, func() error {
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			records, err := repos.StockRepo().FindByProduct(ctx, req.ProductID)
			if err != nil {
				return err
			}

			applied, err := s.allocator.Release(records, req.Quantity)
			if err != nil {
				return err
			}

			return saveRecords(ctx, repos.StockRepo(), records, restockRecordIDs(applied))
		})
	})
	if err != nil {
		return err
	}

	s.invalidateAvailability(ctx, req.ProductID)
	return nil
}

// Transfer moves quantity units of a product between two locations. The
// destination row is created on first use.
func (s *StockService) Transfer(ctx context.Context, req TransferStockRequest) error {
	if req.FromLocationID == req.ToLocationID {
		return shared.NewDomainError("INVALID_TRANSFER", "Source and destination locations must differ")
	}

	err := s.withConflictRetry(ctx, func() error {
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			from, err := repos.StockRepo().FindByProductAndLocation(ctx, req.ProductID, req.FromLocationID)
			if err != nil {
				return err
			}
			to, err := repos.StockRepo().GetOrCreate(ctx, req.ProductID, req.ToLocationID)
			if err != nil {
				return err
			}

			if err := s.allocator.Transfer(from, to, req.Quantity); err != nil {
				return err
			}

			if err := repos.StockRepo().SaveWithLock(ctx, from); err != nil {
				return err
			}
			return repos.StockRepo().SaveWithLock(ctx, to)
		})
	})
	if err != nil {
		return err
	}

	s.invalidateAvailability(ctx, req.ProductID)
	return nil
}

// Adjust sets a location's balance to the counted quantity
func (s *StockService) Adjust(ctx context.Context, req AdjustStockRequest) error {
	err := s.withConflictRetry(ctx, func() error {
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			record, err := repos.StockRepo().GetOrCreate(ctx, req.ProductID, req.LocationID)
			if err != nil {
				return err
			}
			if err := record.AdjustTo(req.ActualQuantity, req.Reason); err != nil {
				return err
			}
			return repos.StockRepo().SaveWithLock(ctx, record)
		})
	})
	if err != nil {
		return err
	}

	s.invalidateAvailability(ctx, req.ProductID)
	return nil
}

// SetThresholds configures a location's low/high stock thresholds
func (s *StockService) SetThresholds(ctx context.Context, req SetThresholdsRequest) error {
	return s.withConflictRetry(ctx, func() error {
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			record, err := repos.StockRepo().GetOrCreate(ctx, req.ProductID, req.LocationID)
			if err != nil {
				return err
			}
			if err := record.SetThresholds(req.Low, req.High); err != nil {
				return err
			}
			return repos.StockRepo().SaveWithLock(ctx, record)
		})
	})
}

// GetAvailable returns the aggregate availability for a product, served from
// cache when possible
func (s *StockService) GetAvailable(ctx context.Context, productID uuid.UUID) (*AvailabilityResponse, error) {
	if s.cache != nil {
		if available, hit, err := s.cache.Get(ctx, productID); err == nil && hit {
			return &AvailabilityResponse{ProductID: productID, Available: available}, nil
		} else if err != nil {
			s.logger.Warn("availability cache read failed",
				zap.String("product_id", productID.String()),
				zap.Error(err))
		}
	}

	available, err := s.readRepo.SumAvailableByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, productID, available); err != nil {
			s.logger.Warn("availability cache write failed",
				zap.String("product_id", productID.String()),
				zap.Error(err))
		}
	}

	return &AvailabilityResponse{ProductID: productID, Available: available}, nil
}

// ListRecords returns the per-location records for a product
func (s *StockService) ListRecords(ctx context.Context, productID uuid.UUID) ([]StockRecordResponse, error) {
	records, err := s.readRepo.FindByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	responses := make([]StockRecordResponse, len(records))
	for i, r := range records {
		responses[i] = ToStockRecordResponse(r)
	}
	return responses, nil
}

// ListAlerts returns records at or below their low-stock threshold
func (s *StockService) ListAlerts(ctx context.Context, filter shared.Filter) (*shared.Paginated[StockRecordResponse], error) {
	page, err := s.readRepo.FindBelowThreshold(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]StockRecordResponse, len(page.Items))
	for i, r := range page.Items {
		responses[i] = ToStockRecordResponse(r)
	}
	result := shared.NewPaginated(responses, page.Total, page.Page, page.PageSize)
	return &result, nil
}

// withConflictRetry repeats fn while it fails with a version conflict, up to
// the retry budget. Each attempt re-reads state inside a fresh transaction.
func (s *StockService) withConflictRetry(ctx context.Context, fn func() error) error {
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

func (s *StockService) invalidateAvailability(ctx context.Context, productID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, productID); err != nil {
		s.logger.Warn("availability cache invalidation failed",
			zap.String("product_id", productID.String()),
			zap.Error(err))
	}
}

// saveRecords persists the touched subset of records with optimistic locks
func saveRecords(ctx context.Context, repo stock.Repository, records []*stock.StockRecord, touched map[uuid.UUID]bool) error {
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

func deductionRecordIDs(steps []stock.Deduction) map[uuid.UUID]bool {
	ids := make(map[uuid.UUID]bool, len(steps))
	for _, step := range steps {
		ids[step.RecordID] = true
	}
	return ids
}

func restockRecordIDs(steps []stock.Restock) map[uuid.UUID]bool {
	ids := make(map[uuid.UUID]bool, len(steps))
	for _, step := range steps {
		ids[step.RecordID] = true
	}
	return ids
}
