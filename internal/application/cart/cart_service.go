package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/domain/stock"
	"go.uber.org/zap"
)

// StockReader answers aggregate availability queries. Satisfied by the stock
// repository.
type StockReader interface {
	SumAvailableByProduct(ctx context.Context, productID uuid.UUID) (decimal.Decimal, error)
}

// CartService manages a user's cart lines and computes cart totals
type CartService struct {
	cartRepo    cart.Repository
	productRepo catalog.Repository
	stockReader StockReader
	logger      *zap.Logger
}

// NewCartService creates a new CartService
func NewCartService(cartRepo cart.Repository, productRepo catalog.Repository, stockReader StockReader, logger *zap.Logger) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		stockReader: stockReader,
		logger:      logger,
	}
}

// AddItem puts quantity units of a product into the user's cart. Re-adding a
// product merges into the existing line; the merge is an atomic upsert so
// concurrent adds never lose increments. The cumulative line quantity must
// stay within the product's aggregate availability.
func (s *CartService) AddItem(ctx context.Context, userID uuid.UUID, req AddItemRequest) (*CartResponse, error) {
	product, err := s.sellableProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	cumulative := req.Quantity
	if existing, err := s.cartRepo.FindLine(ctx, userID, req.ProductID); err == nil {
		cumulative = cumulative.Add(existing.Quantity)
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	if err := s.checkAvailability(ctx, product, cumulative); err != nil {
		return nil, err
	}

	line, err := cart.NewCartLine(userID, req.ProductID, req.Quantity)
	if err != nil {
		return nil, err
	}
	if err := s.cartRepo.Upsert(ctx, line); err != nil {
		return nil, err
	}

	return s.GetCart(ctx, userID)
}

// UpdateQuantity replaces the quantity of an existing cart line, subject to
// the same availability check as AddItem
func (s *CartService) UpdateQuantity(ctx context.Context, userID, productID uuid.UUID, req UpdateQuantityRequest) (*CartResponse, error) {
	product, err := s.sellableProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	line, err := s.cartRepo.FindLine(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if err := line.ChangeQuantity(req.Quantity); err != nil {
		return nil, err
	}
	if err := s.checkAvailability(ctx, product, req.Quantity); err != nil {
		return nil, err
	}

	if err := s.cartRepo.UpdateQuantity(ctx, userID, productID, req.Quantity); err != nil {
		return nil, err
	}

	return s.GetCart(ctx, userID)
}

// RemoveItem deletes a single line from the user's cart
func (s *CartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID) error {
	return s.cartRepo.RemoveLine(ctx, userID, productID)
}

// Clear empties the user's cart
func (s *CartService) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.cartRepo.Clear(ctx, userID)
}

// GetCart returns the user's cart priced from the current catalog, with
// subtotal, tax, shipping and total computed
func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*CartResponse, error) {
	lines, err := s.cartRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	priced, responses, err := s.priceLines(ctx, lines)
	if err != nil {
		return nil, err
	}

	totals, err := cart.CalculateTotals(priced, valueobject.ZeroVND())
	if err != nil {
		return nil, err
	}

	return &CartResponse{Lines: responses, Totals: totals}, nil
}

// priceLines resolves catalog products for the cart lines and pairs each
// quantity with its effective unit price. Lines whose product has gone
// missing or inactive are surfaced as unavailable rather than skipped.
func (s *CartService) priceLines(ctx context.Context, lines []*cart.CartLine) ([]cart.PricedLine, []CartLineResponse, error) {
	if len(lines) == 0 {
		return nil, []CartLineResponse{}, nil
	}

	ids := make([]uuid.UUID, len(lines))
	for i, line := range lines {
		ids[i] = line.ProductID
	}
	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}

	priced := make([]cart.PricedLine, 0, len(lines))
	responses := make([]CartLineResponse, 0, len(lines))
	for _, line := range lines {
		product, ok := products[line.ProductID]
		if !ok || !product.IsAvailable() {
			return nil, nil, catalog.NewProductUnavailableError(line.ProductID)
		}

		unitPrice := product.EffectivePrice()
		priced = append(priced, cart.PricedLine{
			ProductID:   product.ID.String(),
			ProductName: product.Name,
			Quantity:    line.Quantity,
			UnitPrice:   unitPrice,
		})
		responses = append(responses, CartLineResponse{
			ProductID:   line.ProductID,
			ProductName: product.Name,
			Quantity:    line.Quantity,
			UnitPrice:   unitPrice,
			LineTotal:   unitPrice.Mul(line.Quantity),
		})
	}

	return priced, responses, nil
}

func (s *CartService) sellableProduct(ctx context.Context, productID uuid.UUID) (*catalog.Product, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, catalog.NewProductUnavailableError(productID)
		}
		return nil, err
	}
	if !product.IsAvailable() {
		return nil, catalog.NewProductUnavailableError(productID)
	}
	return product, nil
}

func (s *CartService) checkAvailability(ctx context.Context, product *catalog.Product, required decimal.Decimal) error {
	available, err := s.stockReader.SumAvailableByProduct(ctx, product.ID)
	if err != nil {
		return err
	}
	if available.LessThan(required) {
		return stock.NewInsufficientStockError(product.ID, required, available)
	}
	return nil
}
