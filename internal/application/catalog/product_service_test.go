package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

type memProductRepo struct {
	products map[uuid.UUID]*catalog.Product
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{products: make(map[uuid.UUID]*catalog.Product)}
}

func (r *memProductRepo) add(sku, name string, price int64, active bool) *catalog.Product {
	p := &catalog.Product{
		BaseEntity: shared.NewBaseEntity(),
		SKU:        sku,
		Name:       name,
		Active:     active,
		ListPrice:  valueobject.NewMoneyVNDFromInt(price),
	}
	r.products[p.ID] = p
	return p
}

func (r *memProductRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return p, nil
}

func (r *memProductRepo) FindByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*catalog.Product, error) {
	result := make(map[uuid.UUID]*catalog.Product)
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			result[id] = p
		}
	}
	return result, nil
}

func (r *memProductRepo) FindBySKU(_ context.Context, sku string) (*catalog.Product, error) {
	for _, p := range r.products {
		if p.SKU == sku {
			return p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memProductRepo) FindActive(_ context.Context, filter shared.Filter) (*shared.Paginated[*catalog.Product], error) {
	var items []*catalog.Product
	for _, p := range r.products {
		if p.Active {
			items = append(items, p)
		}
	}
	page := shared.NewPaginated(items, int64(len(items)), filter.Page, filter.PageSize)
	return &page, nil
}

func TestProductService(t *testing.T) {
	ctx := context.Background()

	t.Run("get returns projection with effective price", func(t *testing.T) {
		repo := newMemProductRepo()
		p := repo.add("SKU-1", "Phone", 1_000_000, true)
		discounted := valueobject.NewMoneyVNDFromInt(900_000)
		p.DiscountPrice = &discounted

		svc := NewProductService(repo, zap.NewNop())
		resp, err := svc.Get(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "SKU-1", resp.SKU)
		assert.True(t, resp.EffectivePrice.Equal(discounted))
	})

	t.Run("get unknown product returns not found", func(t *testing.T) {
		svc := NewProductService(newMemProductRepo(), zap.NewNop())
		_, err := svc.Get(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("list active excludes inactive products", func(t *testing.T) {
		repo := newMemProductRepo()
		repo.add("SKU-1", "Phone", 1_000_000, true)
		repo.add("SKU-2", "Retired", 500_000, false)

		svc := NewProductService(repo, zap.NewNop())
		page, err := svc.ListActive(ctx, shared.DefaultFilter())
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, "SKU-1", page.Items[0].SKU)
	})
}
