package catalog

import (
	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// ProductResponse is the API projection of a catalog product
type ProductResponse struct {
	ID             uuid.UUID          `json:"id"`
	SKU            string             `json:"sku"`
	Name           string             `json:"name"`
	Active         bool               `json:"active"`
	ListPrice      valueobject.Money  `json:"list_price"`
	DiscountPrice  *valueobject.Money `json:"discount_price,omitempty"`
	EffectivePrice valueobject.Money  `json:"effective_price"`
}

// ToProductResponse converts a product to its API projection
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:             p.ID,
		SKU:            p.SKU,
		Name:           p.Name,
		Active:         p.Active,
		ListPrice:      p.ListPrice,
		DiscountPrice:  p.DiscountPrice,
		EffectivePrice: p.EffectivePrice(),
	}
}
