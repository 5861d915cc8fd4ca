package order

import (
	"context"

	"github.com/google/uuid"
)

// AvailabilityInvalidator drops cached aggregate availability for a product
// after a stock mutation commits
type AvailabilityInvalidator interface {
	Invalidate(ctx context.Context, productID uuid.UUID) error
}

// StatusChangeNotification carries the facts a notification channel needs
// about an order that moved to a new status
type StatusChangeNotification struct {
	OrderNumber string
	CustomerID  string
	FromStatus  string
	ToStatus    string
}

// StatusNotifier delivers order status notifications. Called after the
// transition commits; a failure is logged and never affects the order.
type StatusNotifier interface {
	NotifyOrderStatusChanged(ctx context.Context, notification StatusChangeNotification) error
}
