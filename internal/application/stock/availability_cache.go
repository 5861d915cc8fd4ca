package stock

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AvailabilityCache caches aggregate product availability so hot read paths
// skip the database. Entries are invalidated whenever a mutation commits;
// a cache miss or cache failure always falls through to the database.
type AvailabilityCache interface {
	// Get returns the cached availability and whether it was present
	Get(ctx context.Context, productID uuid.UUID) (decimal.Decimal, bool, error)

	// Set stores the availability for a product
	Set(ctx context.Context, productID uuid.UUID, available decimal.Decimal) error

	// Invalidate drops the cached entry for a product
	Invalidate(ctx context.Context, productID uuid.UUID) error
}
