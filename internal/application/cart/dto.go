package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// AddItemRequest puts quantity units of a product into the cart, merging
// with an existing line for the same product
type AddItemRequest struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
}

// UpdateQuantityRequest replaces the quantity of an existing cart line
type UpdateQuantityRequest struct {
	Quantity decimal.Decimal `json:"quantity" binding:"required"`
}

// CartLineResponse is the API projection of one cart line, priced from the
// current catalog
type CartLineResponse struct {
	ProductID   uuid.UUID         `json:"product_id"`
	ProductName string            `json:"product_name"`
	Quantity    decimal.Decimal   `json:"quantity"`
	UnitPrice   valueobject.Money `json:"unit_price"`
	LineTotal   valueobject.Money `json:"line_total"`
}

// CartResponse is the full cart view with computed totals
type CartResponse struct {
	Lines  []CartLineResponse `json:"lines"`
	Totals cart.Totals        `json:"totals"`
}
