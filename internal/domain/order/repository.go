package order

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// Repository persists orders together with their line snapshots
type Repository interface {
	shared.Repository[Order]

	// FindByOrderNumber returns the order with the given number, or
	// shared.ErrNotFound
	FindByOrderNumber(ctx context.Context, orderNumber string) (*Order, error)

	// FindByCustomer returns a customer's orders, newest first
	FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) (*shared.Paginated[*Order], error)

	// FindByStatus returns orders in the given status
	FindByStatus(ctx context.Context, status OrderStatus, filter shared.Filter) (*shared.Paginated[*Order], error)

	// SaveWithLock persists the order guarded by its optimistic version
	SaveWithLock(ctx context.Context, order *Order) error
}
