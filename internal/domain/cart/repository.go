package cart

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Repository persists cart lines keyed by (user, product)
type Repository interface {
	// FindByUser returns all lines in a user's cart
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*CartLine, error)

	// FindLine returns the line for a user and product, or shared.ErrNotFound
	FindLine(ctx context.Context, userID, productID uuid.UUID) (*CartLine, error)

	// Upsert inserts the line or merges its quantity into an existing one
	// atomically (ON CONFLICT compare-and-increment)
	Upsert(ctx context.Context, line *CartLine) error

	// UpdateQuantity replaces the quantity of an existing line
	UpdateQuantity(ctx context.Context, userID, productID uuid.UUID, quantity decimal.Decimal) error

	// RemoveLine deletes a single line from the cart
	RemoveLine(ctx context.Context, userID, productID uuid.UUID) error

	// Clear removes every line in the user's cart
	Clear(ctx context.Context, userID uuid.UUID) error
}
