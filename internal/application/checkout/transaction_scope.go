package checkout

import (
	"context"

	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/stock"
)

// TransactionScope provides transactional access to every repository the
// checkout touches. The whole order placement (order row, line snapshots,
// stock deductions, ledger update, cart clearing) commits or rolls back as
// one unit.
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
	// CartRepo returns the cart repository scoped to the transaction
	CartRepo() cart.Repository
	// LedgerRepo returns the customer ledger repository scoped to the
	// transaction
	LedgerRepo() customer.Repository
}
