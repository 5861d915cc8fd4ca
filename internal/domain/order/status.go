package order

import (
	"fmt"

	"github.com/storefront/backend/internal/domain/shared"
)

// OrderStatus represents the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusConfirmed  OrderStatus = "CONFIRMED"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// PaymentStatus represents the settlement state of an order
type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "UNPAID"
	PaymentStatusPaid   PaymentStatus = "PAID"
)

// transitions is the single source of truth for legal status changes.
// DELIVERED and CANCELLED are terminal.
var transitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:  {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped},
	OrderStatusShipped:    {OrderStatusDelivered},
	OrderStatusDelivered:  {},
	OrderStatusCancelled:  {},
}

// IsValid checks if the status is a known OrderStatus
func (s OrderStatus) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks the transition table for a legal move
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	for _, next := range transitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true when no further transitions are possible
func (s OrderStatus) IsTerminal() bool {
	return len(transitions[s]) == 0 && s.IsValid()
}

// ErrCodeIllegalTransition identifies rejected status changes
const ErrCodeIllegalTransition = "ILLEGAL_STATE_TRANSITION"

// NewIllegalTransitionError builds the error for a rejected status change.
// The order is left untouched when this is returned.
func NewIllegalTransitionError(from, to OrderStatus) *shared.DomainError {
	err := shared.NewDomainError(
		ErrCodeIllegalTransition,
		fmt.Sprintf("Cannot transition order from %s to %s", from, to),
	)
	return err.WithDetail("from", from.String()).WithDetail("to", to.String())
}
