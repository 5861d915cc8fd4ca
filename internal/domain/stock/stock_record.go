package stock

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// StockRecord is the aggregate root for product availability at a single
// location. The composite business key is ProductID + LocationID. Records are
// never deleted, only zeroed; depletion and restoration always go through
// Deduct/Restock so the quantity invariant (never negative) holds.
type StockRecord struct {
	shared.BaseAggregateRoot
	ProductID          uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_record_product_location,priority:1"`
	LocationID         uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_record_product_location,priority:2"`
	Quantity           decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LowStockThreshold  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	HighStockThreshold decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (StockRecord) TableName() string {
	return "stock_records"
}

// NewStockRecord creates a new stock record for a product-location combination
func NewStockRecord(productID, locationID uuid.UUID) (*StockRecord, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if locationID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_LOCATION", "Location ID cannot be empty")
	}

	return &StockRecord{
		BaseAggregateRoot:  shared.NewBaseAggregateRoot(),
		ProductID:          productID,
		LocationID:         locationID,
		Quantity:           decimal.Zero,
		LowStockThreshold:  decimal.Zero,
		HighStockThreshold: decimal.Zero,
	}, nil
}

// CanFulfill returns true if the record holds at least the requested quantity
func (r *StockRecord) CanFulfill(quantity decimal.Decimal) bool {
	return r.Quantity.GreaterThanOrEqual(quantity)
}

// Deduct removes quantity from the record as part of a reservation.
// The quantity must be positive and must not exceed the current balance.
func (r *StockRecord) Deduct(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Deduction quantity must be positive")
	}
	if !r.CanFulfill(quantity) {
		return NewInsufficientStockError(r.ProductID, quantity, r.Quantity)
	}

	r.Quantity = r.Quantity.Sub(quantity)
	r.UpdatedAt = time.Now()
	r.IncrementVersion()

	r.AddDomainEvent(NewStockReservedEvent(r, quantity))
	if r.IsLowStock() {
		r.AddDomainEvent(NewLowStockAlertEvent(r))
	}

	return nil
}

// Restock adds quantity back to the record (cancellation restoration,
// transfer arrival or purchase receiving)
func (r *StockRecord) Restock(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Restock quantity must be positive")
	}

	r.Quantity = r.Quantity.Add(quantity)
	r.UpdatedAt = time.Now()
	r.IncrementVersion()

	r.AddDomainEvent(NewStockReleasedEvent(r, quantity))

	return nil
}

// AdjustTo sets the balance to the counted quantity (manual adjustment).
// The reason is recorded for audit purposes.
func (r *StockRecord) AdjustTo(actualQuantity decimal.Decimal, reason string) error {
	if actualQuantity.IsNegative() {
		return shared.NewDomainError("INVALID_QUANTITY", "Actual quantity cannot be negative")
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Adjustment reason is required")
	}

	oldQuantity := r.Quantity
	r.Quantity = actualQuantity
	r.UpdatedAt = time.Now()
	r.IncrementVersion()

	r.AddDomainEvent(NewStockAdjustedEvent(r, oldQuantity, actualQuantity, reason))
	if r.IsLowStock() {
		r.AddDomainEvent(NewLowStockAlertEvent(r))
	}

	return nil
}

// SetThresholds sets the low/high stock thresholds used for alerting and
// release distribution
func (r *StockRecord) SetThresholds(low, high decimal.Decimal) error {
	if low.IsNegative() || high.IsNegative() {
		return shared.NewDomainError("INVALID_THRESHOLD", "Thresholds cannot be negative")
	}
	if high.GreaterThan(decimal.Zero) && low.GreaterThan(high) {
		return shared.NewDomainError("INVALID_THRESHOLD", "Low threshold cannot exceed high threshold")
	}

	r.LowStockThreshold = low
	r.HighStockThreshold = high
	r.UpdatedAt = time.Now()
	r.IncrementVersion()

	return nil
}

// IsLowStock returns true if the quantity has fallen to or below the low
// threshold. A record with no threshold set only alerts at zero.
func (r *StockRecord) IsLowStock() bool {
	if r.LowStockThreshold.GreaterThan(decimal.Zero) {
		return r.Quantity.LessThanOrEqual(r.LowStockThreshold)
	}
	return r.Quantity.IsZero()
}

// RemainingCapacity returns how much more this location can practically hold
// and whether a ceiling applies at all. A zero high threshold means the
// location is unbounded.
func (r *StockRecord) RemainingCapacity() (decimal.Decimal, bool) {
	if !r.HasCapacityCeiling() {
		return decimal.Zero, false
	}
	capacity := r.HighStockThreshold.Sub(r.Quantity)
	if capacity.IsNegative() {
		capacity = decimal.Zero
	}
	return capacity, true
}

// HasCapacityCeiling returns true when a high threshold bounds this location
func (r *StockRecord) HasCapacityCeiling() bool {
	return r.HighStockThreshold.GreaterThan(decimal.Zero)
}

// IsDepleted returns true when the record holds no stock
func (r *StockRecord) IsDepleted() bool {
	return r.Quantity.IsZero()
}
