package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// Repository reads catalog products
type Repository interface {
	// FindByID returns the product, or shared.ErrNotFound
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByIDs returns the products for a set of ids; missing ids are
	// simply absent from the result
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Product, error)

	// FindBySKU returns the product with the given SKU, or shared.ErrNotFound
	FindBySKU(ctx context.Context, sku string) (*Product, error)

	// FindActive lists sellable products
	FindActive(ctx context.Context, filter shared.Filter) (*shared.Paginated[*Product], error)
}
