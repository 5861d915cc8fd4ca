package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/shared"
)

// GormCartRepository implements cart.Repository using GORM
type GormCartRepository struct {
	db *gorm.DB
}

// NewGormCartRepository creates a new GormCartRepository
func NewGormCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// FindByUser returns all lines in a user's cart
func (r *GormCartRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*cart.CartLine, error) {
	var lines []*cart.CartLine
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&lines).Error; err != nil {
		return nil, translateError("cart.find", err)
	}
	return lines, nil
}

// FindLine returns the line for a user and product
func (r *GormCartRepository) FindLine(ctx context.Context, userID, productID uuid.UUID) (*cart.CartLine, error) {
	var line cart.CartLine
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&line).Error; err != nil {
		return nil, translateError("cart.find", err)
	}
	return &line, nil
}

// Upsert inserts the line or merges its quantity into an existing one.
// The increment happens in the database so concurrent adds cannot lose
// each other's quantity.
func (r *GormCartRepository) Upsert(ctx context.Context, line *cart.CartLine) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"quantity":   gorm.Expr("cart_lines.quantity + excluded.quantity"),
				"updated_at": time.Now(),
			}),
		}).
		Create(line).Error
	return translateError("cart.upsert", err)
}

// UpdateQuantity replaces the quantity of an existing line
func (r *GormCartRepository) UpdateQuantity(ctx context.Context, userID, productID uuid.UUID, quantity decimal.Decimal) error {
	result := r.db.WithContext(ctx).
		Model(&cart.CartLine{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Updates(map[string]interface{}{
			"quantity":   quantity,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return translateError("cart.update", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// RemoveLine deletes a single line from the cart
func (r *GormCartRepository) RemoveLine(ctx context.Context, userID, productID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Delete(&cart.CartLine{}, "user_id = ? AND product_id = ?", userID, productID)
	if result.Error != nil {
		return translateError("cart.remove", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Clear removes every line in the user's cart
func (r *GormCartRepository) Clear(ctx context.Context, userID uuid.UUID) error {
	err := r.db.WithContext(ctx).
		Delete(&cart.CartLine{}, "user_id = ?", userID).Error
	return translateError("cart.clear", err)
}

// Ensure GormCartRepository implements cart.Repository
var _ cart.Repository = (*GormCartRepository)(nil)
