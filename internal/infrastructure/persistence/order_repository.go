package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
)

// GormOrderRepository implements order.Repository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order with its lines by ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&o, "id = ?", id).Error; err != nil {
		return nil, translateError("order.find", err)
	}
	return &o, nil
}

// FindAll returns orders matching the filter
func (r *GormOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]order.Order, error) {
	var orders []order.Order
	query := applyFilter(r.db.WithContext(ctx).Model(&order.Order{}).Preload("Lines"), filter)
	query = r.applyFieldFilters(query, filter)
	if err := query.Find(&orders).Error; err != nil {
		return nil, translateError("order.list", err)
	}
	return orders, nil
}

// Count counts orders matching the filter
func (r *GormOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFieldFilters(r.db.WithContext(ctx).Model(&order.Order{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, translateError("order.count", err)
	}
	return count, nil
}

// Save creates or updates an order together with its lines. Lines are
// frozen snapshots so they are only ever inserted, never rewritten.
func (r *GormOrderRepository) Save(ctx context.Context, o *order.Order) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Lines").Save(o).Error; err != nil {
			return err
		}
		for i := range o.Lines {
			o.Lines[i].OrderID = o.ID
			if err := tx.Save(&o.Lines[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return translateError("order.save", err)
}

// FindByOrderNumber returns the order with the given number
func (r *GormOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("order_number = ?", orderNumber).
		First(&o).Error; err != nil {
		return nil, translateError("order.find", err)
	}
	return &o, nil
}

// FindByCustomer returns a customer's orders, newest first
func (r *GormOrderRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) (*shared.Paginated[*order.Order], error) {
	base := r.db.WithContext(ctx).
		Model(&order.Order{}).
		Where("customer_id = ?", customerID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, translateError("order.count", err)
	}

	var orders []*order.Order
	query := applyFilter(base.Preload("Lines"), orderFilterWithDefault(filter))
	if err := query.Find(&orders).Error; err != nil {
		return nil, translateError("order.list", err)
	}

	page := shared.NewPaginated(orders, total, filter.Page, filter.PageSize)
	return &page, nil
}

// FindByStatus returns orders in the given status
func (r *GormOrderRepository) FindByStatus(ctx context.Context, status order.OrderStatus, filter shared.Filter) (*shared.Paginated[*order.Order], error) {
	base := r.db.WithContext(ctx).
		Model(&order.Order{}).
		Where("status = ?", status)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, translateError("order.count", err)
	}

	var orders []*order.Order
	query := applyFilter(base.Preload("Lines"), orderFilterWithDefault(filter))
	if err := query.Find(&orders).Error; err != nil {
		return nil, translateError("order.list", err)
	}

	page := shared.NewPaginated(orders, total, filter.Page, filter.PageSize)
	return &page, nil
}

// SaveWithLock saves the order header guarded by its optimistic version.
// Lines are immutable after placement and never touched here.
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, o *order.Order) error {
	result := r.db.WithContext(ctx).
		Model(&order.Order{}).
		Where("id = ? AND version = ?", o.ID, o.Version-1).
		Updates(map[string]interface{}{
			"status":          o.Status,
			"payment_status":  o.PaymentStatus,
			"tracking_number": o.TrackingNumber,
			"shipped_at":      o.ShippedAt,
			"delivered_at":    o.DeliveredAt,
			"cancelled_at":    o.CancelledAt,
			"cancel_reason":   o.CancelReason,
			"version":         o.Version,
			"updated_at":      o.UpdatedAt,
		})

	if result.Error != nil {
		return translateError("order.save", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// applyFieldFilters maps supported filter keys onto SQL predicates
func (r *GormOrderRepository) applyFieldFilters(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "payment_status":
			query = query.Where("payment_status = ?", value)
		}
	}
	return query
}

// orderFilterWithDefault orders by placement time unless the caller asked
// for something else
func orderFilterWithDefault(filter shared.Filter) shared.Filter {
	if filter.OrderBy == "" {
		filter.OrderBy = "placed_at"
		filter.OrderDir = "desc"
	}
	return filter
}

// Ensure GormOrderRepository implements order.Repository
var _ order.Repository = (*GormOrderRepository)(nil)
