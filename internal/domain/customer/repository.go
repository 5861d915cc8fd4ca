package customer

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// Repository persists customer ledgers
type Repository interface {
	shared.Repository[CustomerLedger]

	// FindByUser returns the ledger for a user, or shared.ErrNotFound
	FindByUser(ctx context.Context, userID uuid.UUID) (*CustomerLedger, error)

	// GetOrCreate returns the ledger for a user, creating a zero-spend entry
	// if none exists yet
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*CustomerLedger, error)

	// SaveWithLock persists the ledger guarded by its optimistic version
	SaveWithLock(ctx context.Context, ledger *CustomerLedger) error
}
