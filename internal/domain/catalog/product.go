package catalog

import (
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// Product is the read-side catalog projection consumed when validating cart
// lines and freezing order line snapshots. Catalog authoring lives outside
// this service; rows here are only ever read.
type Product struct {
	shared.BaseEntity
	SKU           string             `gorm:"type:varchar(64);not null;uniqueIndex"`
	Name          string             `gorm:"type:varchar(255);not null"`
	Active        bool               `gorm:"not null;default:true;index"`
	ListPrice     valueobject.Money  `gorm:"type:decimal(18,2);not null"`
	DiscountPrice *valueobject.Money `gorm:"type:decimal(18,2)"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// EffectivePrice returns the discount price when one is set and positive,
// the list price otherwise
func (p *Product) EffectivePrice() valueobject.Money {
	if p.DiscountPrice != nil && !p.DiscountPrice.IsNegative() && !p.DiscountPrice.IsZero() {
		return *p.DiscountPrice
	}
	return p.ListPrice
}

// IsAvailable returns true when the product can be sold
func (p *Product) IsAvailable() bool {
	return p.Active
}
