package order

import (
	"github.com/storefront/backend/internal/domain/shared"
)

// Event type constants for the order lifecycle
const (
	EventTypeOrderPlaced        = "order.placed"
	EventTypeOrderStatusChanged = "order.status_changed"
	EventTypeOrderShipped       = "order.shipped"
	EventTypeOrderDelivered     = "order.delivered"
	EventTypeOrderCancelled     = "order.cancelled"
)

const aggregateTypeOrder = "Order"

// OrderPlacedEvent is emitted when checkout commits a new order
type OrderPlacedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string `json:"order_number"`
	CustomerID  string `json:"customer_id"`
	Total       string `json:"total"`
}

// NewOrderPlacedEvent creates an OrderPlacedEvent
func NewOrderPlacedEvent(o *Order) *OrderPlacedEvent {
	return &OrderPlacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPlaced, aggregateTypeOrder, o.ID),
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID.String(),
		Total:           o.Total.Amount().String(),
	}
}

// OrderStatusChangedEvent is emitted on every legal status transition
type OrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string `json:"order_number"`
	FromStatus  string `json:"from_status"`
	ToStatus    string `json:"to_status"`
}

// NewOrderStatusChangedEvent creates an OrderStatusChangedEvent
func NewOrderStatusChangedEvent(o *Order, from, to OrderStatus) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderStatusChanged, aggregateTypeOrder, o.ID),
		OrderNumber:     o.OrderNumber,
		FromStatus:      from.String(),
		ToStatus:        to.String(),
	}
}

// OrderShippedEvent is emitted when the order ships
type OrderShippedEvent struct {
	shared.BaseDomainEvent
	OrderNumber    string `json:"order_number"`
	TrackingNumber string `json:"tracking_number"`
}

// NewOrderShippedEvent creates an OrderShippedEvent
func NewOrderShippedEvent(o *Order) *OrderShippedEvent {
	return &OrderShippedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderShipped, aggregateTypeOrder, o.ID),
		OrderNumber:     o.OrderNumber,
		TrackingNumber:  o.TrackingNumber,
	}
}

// OrderDeliveredEvent is emitted on delivery
type OrderDeliveredEvent struct {
	shared.BaseDomainEvent
	OrderNumber string `json:"order_number"`
}

// NewOrderDeliveredEvent creates an OrderDeliveredEvent
func NewOrderDeliveredEvent(o *Order) *OrderDeliveredEvent {
	return &OrderDeliveredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderDelivered, aggregateTypeOrder, o.ID),
		OrderNumber:     o.OrderNumber,
	}
}

// OrderCancelledEvent is emitted on cancellation
type OrderCancelledEvent struct {
	shared.BaseDomainEvent
	OrderNumber string `json:"order_number"`
	Reason      string `json:"reason"`
}

// NewOrderCancelledEvent creates an OrderCancelledEvent
func NewOrderCancelledEvent(o *Order, reason string) *OrderCancelledEvent {
	return &OrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCancelled, aggregateTypeOrder, o.ID),
		OrderNumber:     o.OrderNumber,
		Reason:          reason,
	}
}
