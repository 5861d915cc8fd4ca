package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/stock"
)

// GormStockRepository implements stock.Repository using GORM
type GormStockRepository struct {
	db *gorm.DB
}

// NewGormStockRepository creates a new GormStockRepository
func NewGormStockRepository(db *gorm.DB) *GormStockRepository {
	return &GormStockRepository{db: db}
}

// FindByID finds a stock record by its ID
func (r *GormStockRepository) FindByID(ctx context.Context, id uuid.UUID) (*stock.StockRecord, error) {
	var record stock.StockRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		return nil, translateError("stock.find", err)
	}
	return &record, nil
}

// FindAll returns stock records matching the filter
func (r *GormStockRepository) FindAll(ctx context.Context, filter shared.Filter) ([]stock.StockRecord, error) {
	var records []stock.StockRecord
	query := applyFilter(r.db.WithContext(ctx).Model(&stock.StockRecord{}), filter)
	query = r.applyFieldFilters(query, filter)
	if err := query.Find(&records).Error; err != nil {
		return nil, translateError("stock.list", err)
	}
	return records, nil
}

// Count counts stock records matching the filter
func (r *GormStockRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFieldFilters(r.db.WithContext(ctx).Model(&stock.StockRecord{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, translateError("stock.count", err)
	}
	return count, nil
}

// Save creates or updates a stock record
func (r *GormStockRepository) Save(ctx context.Context, record *stock.StockRecord) error {
	return translateError("stock.save", r.db.WithContext(ctx).Save(record).Error)
}

// FindByProduct returns every location row for a product
func (r *GormStockRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]*stock.StockRecord, error) {
	var records []*stock.StockRecord
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("location_id ASC").
		Find(&records).Error; err != nil {
		return nil, translateError("stock.find", err)
	}
	return records, nil
}

// FindByProductAndLocation finds the single row for a product at a location
func (r *GormStockRepository) FindByProductAndLocation(ctx context.Context, productID, locationID uuid.UUID) (*stock.StockRecord, error) {
	var record stock.StockRecord
	if err := r.db.WithContext(ctx).
		Where("product_id = ? AND location_id = ?", productID, locationID).
		First(&record).Error; err != nil {
		return nil, translateError("stock.find", err)
	}
	return &record, nil
}

// GetOrCreate gets the existing record for (product, location) or creates a zero row
func (r *GormStockRepository) GetOrCreate(ctx context.Context, productID, locationID uuid.UUID) (*stock.StockRecord, error) {
	record, err := r.FindByProductAndLocation(ctx, productID, locationID)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	record, err = stock.NewStockRecord(productID, locationID)
	if err != nil {
		return nil, err
	}

	// ON CONFLICT handles a racing insert for the same key
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}, {Name: "location_id"}},
			DoNothing: true,
		}).
		Create(record).Error; err != nil {
		return nil, translateError("stock.create", err)
	}

	if record.ID == uuid.Nil {
		return r.FindByProductAndLocation(ctx, productID, locationID)
	}
	return record, nil
}

// SumAvailableByProduct returns the total quantity across all locations
func (r *GormStockRepository) SumAvailableByProduct(ctx context.Context, productID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&stock.StockRecord{}).
		Select("COALESCE(SUM(quantity), 0) as total").
		Where("product_id = ?", productID).
		Scan(&result).Error; err != nil {
		return decimal.Zero, translateError("stock.sum", err)
	}
	return result.Total, nil
}

// FindBelowThreshold returns records at or below their low-stock threshold.
// Records without a threshold only match when fully depleted.
func (r *GormStockRepository) FindBelowThreshold(ctx context.Context, filter shared.Filter) (*shared.Paginated[*stock.StockRecord], error) {
	base := r.db.WithContext(ctx).
		Model(&stock.StockRecord{}).
		Where("(low_stock_threshold > 0 AND quantity <= low_stock_threshold) OR (low_stock_threshold = 0 AND quantity = 0)")

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, translateError("stock.count", err)
	}

	var records []*stock.StockRecord
	if err := applyFilter(base, filter).Find(&records).Error; err != nil {
		return nil, translateError("stock.list", err)
	}

	page := shared.NewPaginated(records, total, filter.Page, filter.PageSize)
	return &page, nil
}

// SaveWithLock saves the record guarded by its optimistic version
func (r *GormStockRepository) SaveWithLock(ctx context.Context, record *stock.StockRecord) error {
	result := r.db.WithContext(ctx).
		Model(record).
		Where("id = ? AND version = ?", record.ID, record.Version-1).
		Updates(map[string]interface{}{
			"quantity":             record.Quantity,
			"low_stock_threshold":  record.LowStockThreshold,
			"high_stock_threshold": record.HighStockThreshold,
			"version":              record.Version,
			"updated_at":           record.UpdatedAt,
		})

	if result.Error != nil {
		return translateError("stock.save", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// applyFieldFilters maps supported filter keys onto SQL predicates
func (r *GormStockRepository) applyFieldFilters(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "product_id":
			query = query.Where("product_id = ?", value)
		case "location_id":
			query = query.Where("location_id = ?", value)
		case "has_stock":
			if value == true {
				query = query.Where("quantity > 0")
			}
		case "depleted":
			if value == true {
				query = query.Where("quantity = 0")
			}
		}
	}
	return query
}

// Ensure GormStockRepository implements stock.Repository
var _ stock.Repository = (*GormStockRepository)(nil)
