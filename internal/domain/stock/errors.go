package stock

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// ErrCodeInsufficientStock identifies a reservation that cannot be satisfied
// by the combined supply across all locations.
const ErrCodeInsufficientStock = "INSUFFICIENT_STOCK"

// NewInsufficientStockError reports that requested units of productID could
// not be reserved against available supply. The identifiers ride in Details
// so callers can render a precise message.
func NewInsufficientStockError(productID uuid.UUID, requested, available decimal.Decimal) *shared.DomainError {
	err := shared.NewDomainError(ErrCodeInsufficientStock,
		fmt.Sprintf("Insufficient stock for product %s: requested %s, available %s",
			productID, requested.String(), available.String()))
	return err.
		WithDetail("product_id", productID.String()).
		WithDetail("requested", requested.String()).
		WithDetail("available", available.String())
}

// IsInsufficientStock reports whether err is an insufficient-stock failure
func IsInsufficientStock(err error) bool {
	var domainErr *shared.DomainError
	return errors.As(err, &domainErr) && domainErr.Code == ErrCodeInsufficientStock
}
