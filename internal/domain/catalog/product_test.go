package catalog

import (
	"testing"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
)

func TestProduct_EffectivePrice(t *testing.T) {
	list := valueobject.NewMoneyVNDFromInt(200000)

	t.Run("list price when no discount set", func(t *testing.T) {
		p := &Product{BaseEntity: shared.NewBaseEntity(), SKU: "MUG-01", Name: "Ceramic Mug", Active: true, ListPrice: list}
		assert.True(t, p.EffectivePrice().Equal(list))
	})

	t.Run("discount price wins when set", func(t *testing.T) {
		discounted := valueobject.NewMoneyVNDFromInt(150000)
		p := &Product{BaseEntity: shared.NewBaseEntity(), SKU: "MUG-01", Name: "Ceramic Mug", Active: true, ListPrice: list, DiscountPrice: &discounted}
		assert.True(t, p.EffectivePrice().Equal(discounted))
	})

	t.Run("zero discount falls back to list price", func(t *testing.T) {
		zero := valueobject.ZeroVND()
		p := &Product{BaseEntity: shared.NewBaseEntity(), SKU: "MUG-01", Name: "Ceramic Mug", Active: true, ListPrice: list, DiscountPrice: &zero}
		assert.True(t, p.EffectivePrice().Equal(list))
	})
}

func TestProduct_IsAvailable(t *testing.T) {
	p := &Product{Active: true}
	assert.True(t, p.IsAvailable())
	p.Active = false
	assert.False(t, p.IsAvailable())
}
