package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// CartLine is one product entry in a user's cart. The business key is
// UserID + ProductID; re-adding a product merges into the existing line
// instead of creating a duplicate.
type CartLine struct {
	shared.BaseEntity
	UserID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_cart_line_user_product,priority:1"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_cart_line_user_product,priority:2"`
	Quantity  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (CartLine) TableName() string {
	return "cart_lines"
}

// NewCartLine creates a cart line for a user and product
func NewCartLine(userID, productID uuid.UUID, quantity decimal.Decimal) (*CartLine, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity.LessThan(decimal.NewFromInt(1)) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Cart quantity must be at least 1")
	}

	return &CartLine{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
		ProductID:  productID,
		Quantity:   quantity,
	}, nil
}

// Merge adds quantity into the line (re-adding the same product)
func (l *CartLine) Merge(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Merge quantity must be positive")
	}
	l.Quantity = l.Quantity.Add(quantity)
	l.UpdatedAt = time.Now()
	return nil
}

// ChangeQuantity replaces the line quantity
func (l *CartLine) ChangeQuantity(quantity decimal.Decimal) error {
	if quantity.LessThan(decimal.NewFromInt(1)) {
		return shared.NewDomainError("INVALID_QUANTITY", "Cart quantity must be at least 1")
	}
	l.Quantity = quantity
	l.UpdatedAt = time.Now()
	return nil
}
