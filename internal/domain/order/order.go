package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// OrderLine is a frozen snapshot of one cart line at placement time.
// Catalog price changes after placement never affect the order.
type OrderLine struct {
	shared.BaseEntity
	OrderID      uuid.UUID         `gorm:"type:uuid;not null;index"`
	ProductID    uuid.UUID         `gorm:"type:uuid;not null"`
	ProductName  string            `gorm:"type:varchar(255);not null"`
	Quantity     decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	UnitPrice    valueobject.Money `gorm:"type:decimal(18,2);not null"`
	LineDiscount valueobject.Money `gorm:"type:decimal(18,2);not null;default:0"`
	LineTotal    valueobject.Money `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (OrderLine) TableName() string {
	return "order_lines"
}

// NewOrderLine creates a frozen line snapshot
func NewOrderLine(orderID, productID uuid.UUID, productName string, quantity decimal.Decimal, unitPrice, lineDiscount valueobject.Money) (*OrderLine, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if productName == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if lineDiscount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_DISCOUNT", "Line discount cannot be negative")
	}

	total, err := unitPrice.Mul(quantity).Sub(lineDiscount)
	if err != nil {
		return nil, err
	}
	if total.IsNegative() {
		return nil, shared.NewDomainError("INVALID_DISCOUNT", "Line discount cannot exceed line amount")
	}

	return &OrderLine{
		BaseEntity:   shared.NewBaseEntity(),
		OrderID:      orderID,
		ProductID:    productID,
		ProductName:  productName,
		Quantity:     quantity,
		UnitPrice:    unitPrice,
		LineDiscount: lineDiscount,
		LineTotal:    total,
	}, nil
}

// Order is the aggregate root for a placed order. Monetary amounts and line
// snapshots are frozen at placement; only status, payment and shipping
// metadata change afterwards.
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber     string              `gorm:"type:varchar(50);not null;uniqueIndex"`
	CustomerID      uuid.UUID           `gorm:"type:uuid;not null;index"`
	Lines           []OrderLine         `gorm:"foreignKey:OrderID"`
	Subtotal        valueobject.Money   `gorm:"type:decimal(18,2);not null;default:0"`
	Tax             valueobject.Money   `gorm:"type:decimal(18,2);not null;default:0"`
	ShippingFee     valueobject.Money   `gorm:"type:decimal(18,2);not null;default:0"`
	Discount        valueobject.Money   `gorm:"type:decimal(18,2);not null;default:0"`
	Total           valueobject.Money   `gorm:"type:decimal(18,2);not null;default:0"`
	Status          OrderStatus         `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	PaymentStatus   PaymentStatus       `gorm:"type:varchar(20);not null;default:'UNPAID'"`
	PaymentMethod   string              `gorm:"type:varchar(50);not null"`
	CouponCode      string              `gorm:"type:varchar(50)"`
	ShippingAddress valueobject.Address `gorm:"type:jsonb;not null"`
	TrackingNumber  string              `gorm:"type:varchar(100)"`
	PlacedAt        time.Time           `gorm:"not null"`
	ShippedAt       *time.Time
	DeliveredAt     *time.Time
	CancelledAt     *time.Time
	CancelReason    string `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// NewOrder creates a pending, unpaid order shell. Lines and amounts are
// attached before the order is persisted.
func NewOrder(orderNumber string, customerID uuid.UUID, address valueobject.Address, paymentMethod string) (*Order, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if paymentMethod == "" {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method cannot be empty")
	}

	return &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		CustomerID:        customerID,
		Lines:             make([]OrderLine, 0),
		Subtotal:          valueobject.ZeroVND(),
		Tax:               valueobject.ZeroVND(),
		ShippingFee:       valueobject.ZeroVND(),
		Discount:          valueobject.ZeroVND(),
		Total:             valueobject.ZeroVND(),
		Status:            OrderStatusPending,
		PaymentStatus:     PaymentStatusUnpaid,
		PaymentMethod:     paymentMethod,
		ShippingAddress:   address,
		PlacedAt:          time.Now(),
	}, nil
}

// AddLine attaches a frozen line snapshot. Only allowed before the order
// leaves PENDING.
func (o *Order) AddLine(productID uuid.UUID, productName string, quantity decimal.Decimal, unitPrice, lineDiscount valueobject.Money) error {
	if o.Status != OrderStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Cannot add lines to a non-pending order")
	}

	line, err := NewOrderLine(o.ID, productID, productName, quantity, unitPrice, lineDiscount)
	if err != nil {
		return err
	}

	o.Lines = append(o.Lines, *line)
	o.UpdatedAt = time.Now()
	return nil
}

// ApplyAmounts freezes the monetary breakdown computed at checkout. The
// components must reconcile: total = subtotal + tax + shipping - discount.
func (o *Order) ApplyAmounts(subtotal, tax, shipping, discount, total valueobject.Money) error {
	for _, amount := range []valueobject.Money{subtotal, tax, shipping, discount, total} {
		if amount.IsNegative() {
			return shared.NewDomainError("INVALID_AMOUNT", "Order amounts cannot be negative")
		}
	}

	expected, err := subtotal.Add(tax)
	if err != nil {
		return err
	}
	expected, err = expected.Add(shipping)
	if err != nil {
		return err
	}
	expected, err = expected.Sub(discount)
	if err != nil {
		return err
	}
	if expected.IsNegative() {
		expected = valueobject.ZeroVND()
	}
	if !expected.Equal(total) {
		return shared.NewDomainError("INVALID_AMOUNT", "Order total does not reconcile with its components")
	}

	o.Subtotal = subtotal
	o.Tax = tax
	o.ShippingFee = shipping
	o.Discount = discount
	o.Total = total
	o.UpdatedAt = time.Now()
	return nil
}

// transition moves the order through the state machine, leaving it untouched
// on an illegal move
func (o *Order) transition(target OrderStatus) error {
	if !o.Status.CanTransitionTo(target) {
		return NewIllegalTransitionError(o.Status, target)
	}
	from := o.Status
	o.Status = target
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
	o.AddDomainEvent(NewOrderStatusChangedEvent(o, from, target))
	return nil
}

// Confirm moves the order from PENDING to CONFIRMED
func (o *Order) Confirm() error {
	if len(o.Lines) == 0 {
		return shared.NewDomainError("NO_LINES", "Cannot confirm an order without lines")
	}
	return o.transition(OrderStatusConfirmed)
}

// StartProcessing moves the order from CONFIRMED to PROCESSING
func (o *Order) StartProcessing() error {
	return o.transition(OrderStatusProcessing)
}

// Ship moves the order to SHIPPED. A tracking number is generated when the
// carrier has not assigned one; ShippedAt is stamped only on the first
// successful transition.
func (o *Order) Ship(trackingNumber string) error {
	if err := o.transition(OrderStatusShipped); err != nil {
		return err
	}

	if trackingNumber != "" {
		o.TrackingNumber = trackingNumber
	} else if o.TrackingNumber == "" {
		o.TrackingNumber = GenerateTrackingNumber()
	}
	if o.ShippedAt == nil {
		now := time.Now()
		o.ShippedAt = &now
	}

	o.AddDomainEvent(NewOrderShippedEvent(o))
	return nil
}

// Deliver moves the order to DELIVERED. Cash-on-delivery orders settle on
// receipt, so an unpaid order is marked paid here.
func (o *Order) Deliver() error {
	if err := o.transition(OrderStatusDelivered); err != nil {
		return err
	}

	if o.DeliveredAt == nil {
		now := time.Now()
		o.DeliveredAt = &now
	}
	if o.PaymentStatus == PaymentStatusUnpaid {
		o.PaymentStatus = PaymentStatusPaid
	}

	o.AddDomainEvent(NewOrderDeliveredEvent(o))
	return nil
}

// Cancel moves the order to CANCELLED. Stock restoration and ledger reversal
// are handled by the application service around this call.
func (o *Order) Cancel(reason string) error {
	if err := o.transition(OrderStatusCancelled); err != nil {
		return err
	}

	if o.CancelledAt == nil {
		now := time.Now()
		o.CancelledAt = &now
	}
	o.CancelReason = reason

	o.AddDomainEvent(NewOrderCancelledEvent(o, reason))
	return nil
}

// MarkPaid records payment settlement
func (o *Order) MarkPaid() {
	if o.PaymentStatus == PaymentStatusPaid {
		return
	}
	o.PaymentStatus = PaymentStatusPaid
	o.UpdatedAt = time.Now()
}

// CanCancel returns true while the order has not entered fulfilment
func (o *Order) CanCancel() bool {
	return o.Status.CanTransitionTo(OrderStatusCancelled)
}
