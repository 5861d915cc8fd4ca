package stock

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// Event type constants for the stock ledger
const (
	EventTypeStockReserved    = "stock.reserved"
	EventTypeStockReleased    = "stock.released"
	EventTypeStockAdjusted    = "stock.adjusted"
	EventTypeStockTransferred = "stock.transferred"
	EventTypeLowStockAlert    = "stock.low_stock_alert"
)

const aggregateTypeStockRecord = "StockRecord"

// StockReservedEvent is emitted when quantity is deducted from a location
type StockReservedEvent struct {
	shared.BaseDomainEvent
	ProductID  uuid.UUID       `json:"product_id"`
	LocationID uuid.UUID       `json:"location_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	Remaining  decimal.Decimal `json:"remaining"`
}

// NewStockReservedEvent creates a StockReservedEvent
func NewStockReservedEvent(r *StockRecord, quantity decimal.Decimal) *StockReservedEvent {
	return &StockReservedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockReserved, aggregateTypeStockRecord, r.ID),
		ProductID:       r.ProductID,
		LocationID:      r.LocationID,
		Quantity:        quantity,
		Remaining:       r.Quantity,
	}
}

// StockReleasedEvent is emitted when quantity is returned to a location
type StockReleasedEvent struct {
	shared.BaseDomainEvent
	ProductID  uuid.UUID       `json:"product_id"`
	LocationID uuid.UUID       `json:"location_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	Balance    decimal.Decimal `json:"balance"`
}

// NewStockReleasedEvent creates a StockReleasedEvent
func NewStockReleasedEvent(r *StockRecord, quantity decimal.Decimal) *StockReleasedEvent {
	return &StockReleasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockReleased, aggregateTypeStockRecord, r.ID),
		ProductID:       r.ProductID,
		LocationID:      r.LocationID,
		Quantity:        quantity,
		Balance:         r.Quantity,
	}
}

// StockAdjustedEvent is emitted on manual balance adjustment
type StockAdjustedEvent struct {
	shared.BaseDomainEvent
	ProductID   uuid.UUID       `json:"product_id"`
	LocationID  uuid.UUID       `json:"location_id"`
	OldQuantity decimal.Decimal `json:"old_quantity"`
	NewQuantity decimal.Decimal `json:"new_quantity"`
	Reason      string          `json:"reason"`
}

// NewStockAdjustedEvent creates a StockAdjustedEvent
func NewStockAdjustedEvent(r *StockRecord, oldQuantity, newQuantity decimal.Decimal, reason string) *StockAdjustedEvent {
	return &StockAdjustedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockAdjusted, aggregateTypeStockRecord, r.ID),
		ProductID:       r.ProductID,
		LocationID:      r.LocationID,
		OldQuantity:     oldQuantity,
		NewQuantity:     newQuantity,
		Reason:          reason,
	}
}

// StockTransferredEvent is emitted when stock moves between locations
type StockTransferredEvent struct {
	shared.BaseDomainEvent
	ProductID      uuid.UUID       `json:"product_id"`
	FromLocationID uuid.UUID       `json:"from_location_id"`
	ToLocationID   uuid.UUID       `json:"to_location_id"`
	Quantity       decimal.Decimal `json:"quantity"`
}

// NewStockTransferredEvent creates a StockTransferredEvent
func NewStockTransferredEvent(productID, fromLocationID, toLocationID uuid.UUID, quantity decimal.Decimal) *StockTransferredEvent {
	return &StockTransferredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockTransferred, aggregateTypeStockRecord, productID),
		ProductID:       productID,
		FromLocationID:  fromLocationID,
		ToLocationID:    toLocationID,
		Quantity:        quantity,
	}
}

// LowStockAlertEvent is emitted when a record's quantity falls to or below
// its low-stock threshold
type LowStockAlertEvent struct {
	shared.BaseDomainEvent
	ProductID  uuid.UUID       `json:"product_id"`
	LocationID uuid.UUID       `json:"location_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	Threshold  decimal.Decimal `json:"threshold"`
}

// NewLowStockAlertEvent creates a LowStockAlertEvent
func NewLowStockAlertEvent(r *StockRecord) *LowStockAlertEvent {
	return &LowStockAlertEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLowStockAlert, aggregateTypeStockRecord, r.ID),
		ProductID:       r.ProductID,
		LocationID:      r.LocationID,
		Quantity:        r.Quantity,
		Threshold:       r.LowStockThreshold,
	}
}
