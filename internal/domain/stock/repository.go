package stock

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// Repository persists stock records. FindByProduct returns all location
// rows for a product so planners can run over the full set.
type Repository interface {
	shared.Repository[StockRecord]

	// FindByProduct returns every location row for a product
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]*StockRecord, error)

	// FindByProductAndLocation returns the single row for a product at a
	// location, or shared.ErrNotFound
	FindByProductAndLocation(ctx context.Context, productID, locationID uuid.UUID) (*StockRecord, error)

	// GetOrCreate returns the row for (product, location), creating a zero
	// row if none exists yet
	GetOrCreate(ctx context.Context, productID, locationID uuid.UUID) (*StockRecord, error)

	// SumAvailableByProduct returns the total quantity across all locations
	SumAvailableByProduct(ctx context.Context, productID uuid.UUID) (decimal.Decimal, error)

	// FindBelowThreshold returns records at or below their low-stock threshold
	FindBelowThreshold(ctx context.Context, filter shared.Filter) (*shared.Paginated[*StockRecord], error)

	// SaveWithLock persists the record guarded by its optimistic version.
	// Returns shared.ErrConcurrencyConflict when the version has moved.
	SaveWithLock(ctx context.Context, record *StockRecord) error
}
