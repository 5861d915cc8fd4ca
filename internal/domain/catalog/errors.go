package catalog

import (
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// ErrCodeProductUnavailable identifies cart or checkout rejections caused by
// an inactive or missing product
const ErrCodeProductUnavailable = "PRODUCT_UNAVAILABLE"

// NewProductUnavailableError builds the error for a product that cannot be
// sold
func NewProductUnavailableError(productID uuid.UUID) *shared.DomainError {
	err := shared.NewDomainError(ErrCodeProductUnavailable, "Product is not available for purchase")
	return err.WithDetail("product_id", productID.String())
}

// IsProductUnavailable reports whether err is a product availability
// rejection
func IsProductUnavailable(err error) bool {
	var domainErr *shared.DomainError
	return errors.As(err, &domainErr) && domainErr.Code == ErrCodeProductUnavailable
}
