package catalog

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

// ProductService serves catalog reads for the storefront
type ProductService struct {
	repo   catalog.Repository
	logger *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(repo catalog.Repository, logger *zap.Logger) *ProductService {
	return &ProductService{
		repo:   repo,
		logger: logger.Named("catalog"),
	}
}

// Get returns a single product by ID
func (s *ProductService) Get(ctx context.Context, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// GetBySKU returns a single product by SKU
func (s *ProductService) GetBySKU(ctx context.Context, sku string) (*ProductResponse, error) {
	product, err := s.repo.FindBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// ListActive lists sellable products
func (s *ProductService) ListActive(ctx context.Context, filter shared.Filter) (*shared.Paginated[ProductResponse], error) {
	page, err := s.repo.FindActive(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]ProductResponse, len(page.Items))
	for i, p := range page.Items {
		items[i] = ToProductResponse(p)
	}

	return &shared.Paginated[ProductResponse]{
		Items:      items,
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	}, nil
}
