package order

import (
	"context"

	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/stock"
)

// TransactionScope provides transactional access to the repositories touched
// by order lifecycle operations. Cancellation in particular must update the
// order, the stock ledger and the customer ledger atomically.
type TransactionScope interface {
	// Execute runs fn inside a database transaction. A returned error rolls
	// the transaction back; success commits it.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes the repositories scoped to the current
// transaction
type TransactionalRepositories interface {
	// OrderRepo returns the order repository scoped to the transaction
	OrderRepo() order.Repository
	// StockRepo returns the stock record repository scoped to the transaction
	StockRepo() stock.Repository
	// LedgerRepo returns the customer ledger repository scoped to the
	// transaction
	LedgerRepo() customer.Repository
}
