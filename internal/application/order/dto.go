package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// ShipOrderRequest marks an order shipped, optionally with a carrier-assigned
// tracking number
type ShipOrderRequest struct {
	TrackingNumber string `json:"tracking_number"`
}

// CancelOrderRequest cancels an order with a reason
type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// OrderLineResponse is the API projection of a frozen order line
type OrderLineResponse struct {
	ProductID    uuid.UUID         `json:"product_id"`
	ProductName  string            `json:"product_name"`
	Quantity     decimal.Decimal   `json:"quantity"`
	UnitPrice    valueobject.Money `json:"unit_price"`
	LineDiscount valueobject.Money `json:"line_discount"`
	LineTotal    valueobject.Money `json:"line_total"`
}

// OrderResponse is the API projection of an order
type OrderResponse struct {
	ID              uuid.UUID           `json:"id"`
	OrderNumber     string              `json:"order_number"`
	CustomerID      uuid.UUID           `json:"customer_id"`
	Lines           []OrderLineResponse `json:"lines"`
	Subtotal        valueobject.Money   `json:"subtotal"`
	Tax             valueobject.Money   `json:"tax"`
	ShippingFee     valueobject.Money   `json:"shipping_fee"`
	Discount        valueobject.Money   `json:"discount"`
	Total           valueobject.Money   `json:"total"`
	Status          string              `json:"status"`
	PaymentStatus   string              `json:"payment_status"`
	PaymentMethod   string              `json:"payment_method"`
	CouponCode      string              `json:"coupon_code,omitempty"`
	ShippingAddress valueobject.Address `json:"shipping_address"`
	TrackingNumber  string              `json:"tracking_number,omitempty"`
	PlacedAt        time.Time           `json:"placed_at"`
	ShippedAt       *time.Time          `json:"shipped_at,omitempty"`
	DeliveredAt     *time.Time          `json:"delivered_at,omitempty"`
	CancelledAt     *time.Time          `json:"cancelled_at,omitempty"`
	CancelReason    string              `json:"cancel_reason,omitempty"`
}

// ToOrderResponse converts an order aggregate to its API projection
func ToOrderResponse(o *order.Order) OrderResponse {
	lines := make([]OrderLineResponse, len(o.Lines))
	for i, line := range o.Lines {
		lines[i] = OrderLineResponse{
			ProductID:    line.ProductID,
			ProductName:  line.ProductName,
			Quantity:     line.Quantity,
			UnitPrice:    line.UnitPrice,
			LineDiscount: line.LineDiscount,
			LineTotal:    line.LineTotal,
		}
	}

	return OrderResponse{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID,
		Lines:           lines,
		Subtotal:        o.Subtotal,
		Tax:             o.Tax,
		ShippingFee:     o.ShippingFee,
		Discount:        o.Discount,
		Total:           o.Total,
		Status:          o.Status.String(),
		PaymentStatus:   string(o.PaymentStatus),
		PaymentMethod:   o.PaymentMethod,
		CouponCode:      o.CouponCode,
		ShippingAddress: o.ShippingAddress,
		TrackingNumber:  o.TrackingNumber,
		PlacedAt:        o.PlacedAt,
		ShippedAt:       o.ShippedAt,
		DeliveredAt:     o.DeliveredAt,
		CancelledAt:     o.CancelledAt,
		CancelReason:    o.CancelReason,
	}
}
