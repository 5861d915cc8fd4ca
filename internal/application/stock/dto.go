package stock

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/stock"
)

// ReserveStockRequest asks to reserve quantity units of a product across its
// locations
type ReserveStockRequest struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
}

// ReleaseStockRequest returns quantity units of a product to its locations
type ReleaseStockRequest struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
}

// TransferStockRequest moves quantity units between two locations
type TransferStockRequest struct {
	ProductID      uuid.UUID       `json:"product_id" binding:"required"`
	FromLocationID uuid.UUID       `json:"from_location_id" binding:"required"`
	ToLocationID   uuid.UUID       `json:"to_location_id" binding:"required"`
	Quantity       decimal.Decimal `json:"quantity" binding:"required"`
}

// AdjustStockRequest sets a location's balance to a counted quantity
type AdjustStockRequest struct {
	ProductID      uuid.UUID       `json:"product_id" binding:"required"`
	LocationID     uuid.UUID       `json:"location_id" binding:"required"`
	ActualQuantity decimal.Decimal `json:"actual_quantity"`
	Reason         string          `json:"reason" binding:"required"`
}

// SetThresholdsRequest configures a location's low/high stock thresholds
type SetThresholdsRequest struct {
	ProductID  uuid.UUID       `json:"product_id" binding:"required"`
	LocationID uuid.UUID       `json:"location_id" binding:"required"`
	Low        decimal.Decimal `json:"low"`
	High       decimal.Decimal `json:"high"`
}

// AllocationStep describes one location's share of an applied plan
type AllocationStep struct {
	LocationID uuid.UUID       `json:"location_id"`
	Quantity   decimal.Decimal `json:"quantity"`
}

// ReservationResponse reports an applied reservation
type ReservationResponse struct {
	ProductID uuid.UUID        `json:"product_id"`
	Quantity  decimal.Decimal  `json:"quantity"`
	Steps     []AllocationStep `json:"steps"`
}

// AvailabilityResponse reports aggregate availability for a product
type AvailabilityResponse struct {
	ProductID uuid.UUID       `json:"product_id"`
	Available decimal.Decimal `json:"available"`
}

// StockRecordResponse is the API projection of a stock record
type StockRecordResponse struct {
	ID                 uuid.UUID       `json:"id"`
	ProductID          uuid.UUID       `json:"product_id"`
	LocationID         uuid.UUID       `json:"location_id"`
	Quantity           decimal.Decimal `json:"quantity"`
	LowStockThreshold  decimal.Decimal `json:"low_stock_threshold"`
	HighStockThreshold decimal.Decimal `json:"high_stock_threshold"`
	LowStock           bool            `json:"low_stock"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// ToStockRecordResponse converts a stock record to its API projection
func ToStockRecordResponse(r *stock.StockRecord) StockRecordResponse {
	return StockRecordResponse{
		ID:                 r.ID,
		ProductID:          r.ProductID,
		LocationID:         r.LocationID,
		Quantity:           r.Quantity,
		LowStockThreshold:  r.LowStockThreshold,
		HighStockThreshold: r.HighStockThreshold,
		LowStock:           r.IsLowStock(),
		UpdatedAt:          r.UpdatedAt,
	}
}
