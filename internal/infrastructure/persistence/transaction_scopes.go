package persistence

import (
	"context"

	"gorm.io/gorm"

	appcheckout "github.com/storefront/backend/internal/application/checkout"
	apporder "github.com/storefront/backend/internal/application/order"
	appstock "github.com/storefront/backend/internal/application/stock"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/stock"
)

// gormTransactionalRepositories hands out repositories bound to a single
// transaction. It satisfies the transactional repository interfaces of all
// application services, each of which sees only the subset it declares.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) StockRepo() stock.Repository {
	return NewGormStockRepository(r.tx)
}

func (r *gormTransactionalRepositories) OrderRepo() order.Repository {
	return NewGormOrderRepository(r.tx)
}

func (r *gormTransactionalRepositories) CartRepo() cart.Repository {
	return NewGormCartRepository(r.tx)
}

func (r *gormTransactionalRepositories) LedgerRepo() customer.Repository {
	return NewGormCustomerRepository(r.tx)
}

// GormStockTransactionScope implements the stock service's TransactionScope
// using GORM transactions
type GormStockTransactionScope struct {
	db *gorm.DB
}

// NewGormStockTransactionScope creates a new GormStockTransactionScope
func NewGormStockTransactionScope(db *gorm.DB) *GormStockTransactionScope {
	return &GormStockTransactionScope{db: db}
}

// Execute runs fn inside a database transaction. Commit failures surface as
// retryable persistence errors; errors from fn pass through untouched.
func (s *GormStockTransactionScope) Execute(ctx context.Context, fn func(repos appstock.TransactionalRepositories) error) error {
	return translateError("stock.tx", s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	}))
}

// GormOrderTransactionScope implements the order service's TransactionScope
// using GORM transactions
type GormOrderTransactionScope struct {
	db *gorm.DB
}

// NewGormOrderTransactionScope creates a new GormOrderTransactionScope
func NewGormOrderTransactionScope(db *gorm.DB) *GormOrderTransactionScope {
	return &GormOrderTransactionScope{db: db}
}

// Execute runs fn inside a database transaction. Commit failures surface as
// retryable persistence errors; errors from fn pass through untouched.
func (s *GormOrderTransactionScope) Execute(ctx context.Context, fn func(repos apporder.TransactionalRepositories) error) error {
	return translateError("order.tx", s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	}))
}

// GormCheckoutTransactionScope implements the checkout service's
// TransactionScope using GORM transactions
type GormCheckoutTransactionScope struct {
	db *gorm.DB
}

// NewGormCheckoutTransactionScope creates a new GormCheckoutTransactionScope
func NewGormCheckoutTransactionScope(db *gorm.DB) *GormCheckoutTransactionScope {
	return &GormCheckoutTransactionScope{db: db}
}

// Execute runs fn inside a database transaction. Commit failures surface as
// retryable persistence errors; errors from fn pass through untouched.
func (s *GormCheckoutTransactionScope) Execute(ctx context.Context, fn func(repos appcheckout.TransactionalRepositories) error) error {
	return translateError("checkout.tx", s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	}))
}

// Interface assertions
var (
	_ appstock.TransactionScope             = (*GormStockTransactionScope)(nil)
	_ apporder.TransactionScope             = (*GormOrderTransactionScope)(nil)
	_ appcheckout.TransactionScope          = (*GormCheckoutTransactionScope)(nil)
	_ appstock.TransactionalRepositories    = (*gormTransactionalRepositories)(nil)
	_ apporder.TransactionalRepositories    = (*gormTransactionalRepositories)(nil)
	_ appcheckout.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
)
