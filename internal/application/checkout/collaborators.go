package checkout

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// ErrCodeEmptyCart identifies checkout rejections on an empty cart
const ErrCodeEmptyCart = "EMPTY_CART"

// ErrCodeInvalidCoupon identifies rejected coupon codes
const ErrCodeInvalidCoupon = "INVALID_COUPON"

// ErrEmptyCart is returned when checkout runs against an empty cart
var ErrEmptyCart = shared.NewDomainError(ErrCodeEmptyCart, "Cannot place an order with an empty cart")

// NewInvalidCouponError builds the rejection for a coupon code
func NewInvalidCouponError(code, reason string) *shared.DomainError {
	err := shared.NewDomainError(ErrCodeInvalidCoupon, "Coupon code was rejected")
	return err.WithDetail("coupon_code", code).WithDetail("reason", reason)
}

// IsInvalidCoupon reports whether err is a coupon rejection
func IsInvalidCoupon(err error) bool {
	var domainErr *shared.DomainError
	return errors.As(err, &domainErr) && domainErr.Code == ErrCodeInvalidCoupon
}

// AvailabilityInvalidator drops cached aggregate availability for a product
// after a stock mutation commits
type AvailabilityInvalidator interface {
	Invalidate(ctx context.Context, productID uuid.UUID) error
}

// CouponValidator validates a coupon code against the order subtotal and
// returns the discount it grants. Implementations reject unknown, expired or
// not-yet-applicable codes with an INVALID_COUPON domain error.
type CouponValidator interface {
	Validate(ctx context.Context, code string, subtotal valueobject.Money) (valueobject.Money, error)
}

// PlacedOrderNotification carries the facts a notification channel needs
// about a freshly placed order
type PlacedOrderNotification struct {
	OrderNumber string
	CustomerID  string
	Total       valueobject.Money
	LineCount   int
}

// Notifier delivers order notifications. Called after the checkout
// transaction commits; a failure is logged and never affects the order.
type Notifier interface {
	NotifyOrderPlaced(ctx context.Context, notification PlacedOrderNotification) error
}
