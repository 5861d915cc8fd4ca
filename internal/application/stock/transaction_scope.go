package stock

import (
	"context"

	"github.com/storefront/backend/internal/domain/stock"
)

// TransactionScope provides transactional access to stock repositories.
// Repository operations inside Execute share one database transaction and
// commit or roll back atomically.
type TransactionScope interface {
	// Execute runs fn inside a database transaction. A returned error rolls
	// the transaction back; success commits it.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes the repositories scoped to the current
// transaction
type TransactionalRepositories interface {
	// StockRepo returns the stock record repository scoped to the transaction
	StockRepo() stock.Repository
}

// NoOpTransactionScope runs the function without a real transaction. Used in
// tests and wherever transactional guarantees are not required.
type NoOpTransactionScope struct {
	stockRepo stock.Repository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given
// repository
func NewNoOpTransactionScope(stockRepo stock.Repository) *NoOpTransactionScope {
	return &NoOpTransactionScope{stockRepo: stockRepo}
}

// Execute runs fn directly
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// StockRepo returns the stock record repository
func (s *NoOpTransactionScope) StockRepo() stock.Repository {
	return s.stockRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
