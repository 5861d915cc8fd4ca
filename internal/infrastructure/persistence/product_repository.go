package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

// GormProductRepository implements catalog.Repository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID returns the product with the given ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, translateError("product.find", err)
	}
	return &product, nil
}

// FindByIDs returns the products for a set of IDs keyed by ID; missing IDs
// are simply absent from the result
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*catalog.Product, error) {
	result := make(map[uuid.UUID]*catalog.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var products []*catalog.Product
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&products).Error; err != nil {
		return nil, translateError("product.find", err)
	}

	for _, p := range products {
		result[p.ID] = p
	}
	return result, nil
}

// FindBySKU returns the product with the given SKU
func (r *GormProductRepository) FindBySKU(ctx context.Context, sku string) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).
		Where("sku = ?", sku).
		First(&product).Error; err != nil {
		return nil, translateError("product.find", err)
	}
	return &product, nil
}

// FindActive lists sellable products
func (r *GormProductRepository) FindActive(ctx context.Context, filter shared.Filter) (*shared.Paginated[*catalog.Product], error) {
	base := r.db.WithContext(ctx).
		Model(&catalog.Product{}).
		Where("active = ?", true)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, translateError("product.count", err)
	}

	var products []*catalog.Product
	if err := applyFilter(base, filter).Find(&products).Error; err != nil {
		return nil, translateError("product.list", err)
	}

	page := shared.NewPaginated(products, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return translateError("product.save", r.db.WithContext(ctx).Save(product).Error)
}

// Ensure GormProductRepository implements catalog.Repository
var _ catalog.Repository = (*GormProductRepository)(nil)
