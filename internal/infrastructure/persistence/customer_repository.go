package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/shared"
)

// GormCustomerRepository implements customer.Repository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByID finds a ledger by its ID
func (r *GormCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*customer.CustomerLedger, error) {
	var ledger customer.CustomerLedger
	if err := r.db.WithContext(ctx).First(&ledger, "id = ?", id).Error; err != nil {
		return nil, translateError("ledger.find", err)
	}
	return &ledger, nil
}

// FindAll returns ledgers matching the filter
func (r *GormCustomerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]customer.CustomerLedger, error) {
	var ledgers []customer.CustomerLedger
	query := applyFilter(r.db.WithContext(ctx).Model(&customer.CustomerLedger{}), filter)
	if tier, ok := filter.Filters["tier"]; ok {
		query = query.Where("tier = ?", tier)
	}
	if err := query.Find(&ledgers).Error; err != nil {
		return nil, translateError("ledger.list", err)
	}
	return ledgers, nil
}

// Count counts ledgers matching the filter
func (r *GormCustomerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&customer.CustomerLedger{})
	if tier, ok := filter.Filters["tier"]; ok {
		query = query.Where("tier = ?", tier)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, translateError("ledger.count", err)
	}
	return count, nil
}

// Save creates or updates a ledger
func (r *GormCustomerRepository) Save(ctx context.Context, ledger *customer.CustomerLedger) error {
	return translateError("ledger.save", r.db.WithContext(ctx).Save(ledger).Error)
}

// FindByUser returns the ledger for a user
func (r *GormCustomerRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*customer.CustomerLedger, error) {
	var ledger customer.CustomerLedger
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&ledger).Error; err != nil {
		return nil, translateError("ledger.find", err)
	}
	return &ledger, nil
}

// GetOrCreate returns the ledger for a user, creating a zero-spend entry if needed
func (r *GormCustomerRepository) GetOrCreate(ctx context.Context, userID uuid.UUID) (*customer.CustomerLedger, error) {
	ledger, err := r.FindByUser(ctx, userID)
	if err == nil {
		return ledger, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	ledger, err = customer.NewCustomerLedger(userID)
	if err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(ledger).Error; err != nil {
		return nil, translateError("ledger.create", err)
	}

	if ledger.ID == uuid.Nil {
		return r.FindByUser(ctx, userID)
	}
	return ledger, nil
}

// SaveWithLock saves the ledger guarded by its optimistic version
func (r *GormCustomerRepository) SaveWithLock(ctx context.Context, ledger *customer.CustomerLedger) error {
	result := r.db.WithContext(ctx).
		Model(ledger).
		Where("id = ? AND version = ?", ledger.ID, ledger.Version-1).
		Updates(map[string]interface{}{
			"total_purchased": ledger.TotalPurchased,
			"tier":            ledger.Tier,
			"version":         ledger.Version,
			"updated_at":      ledger.UpdatedAt,
		})

	if result.Error != nil {
		return translateError("ledger.save", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Ensure GormCustomerRepository implements customer.Repository
var _ customer.Repository = (*GormCustomerRepository)(nil)
