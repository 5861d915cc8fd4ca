package customer

import (
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// CustomerLedger tracks a user's lifetime spend and the loyalty tier derived
// from it. One row per user. The tier is never stored out of sync with the
// spend: every mutation re-derives it.
type CustomerLedger struct {
	shared.BaseAggregateRoot
	UserID         uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex"`
	TotalPurchased valueobject.Money `gorm:"type:decimal(18,2);not null;default:0"`
	Tier           LoyaltyTier       `gorm:"type:varchar(20);not null;default:'standard'"`
}

// TableName returns the table name for GORM
func (CustomerLedger) TableName() string {
	return "customer_ledgers"
}

// NewCustomerLedger creates a zero-spend ledger entry for a user
func NewCustomerLedger(userID uuid.UUID) (*CustomerLedger, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}

	return &CustomerLedger{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		TotalPurchased:    valueobject.ZeroVND(),
		Tier:              TierStandard,
	}, nil
}

// RecordPurchase adds an order total to the lifetime spend and re-derives
// the tier
func (l *CustomerLedger) RecordPurchase(amount valueobject.Money) error {
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Purchase amount cannot be negative")
	}

	total, err := l.TotalPurchased.Add(amount)
	if err != nil {
		return err
	}
	l.TotalPurchased = total
	l.Tier = TierFor(l.TotalPurchased)
	l.UpdatedAt = time.Now()
	l.IncrementVersion()
	return nil
}

// ReversePurchase subtracts a cancelled order's total from the lifetime
// spend, flooring at zero, and re-derives the tier
func (l *CustomerLedger) ReversePurchase(amount valueobject.Money) error {
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Reversal amount cannot be negative")
	}

	total, err := l.TotalPurchased.Sub(amount)
	if err != nil {
		return err
	}
	if total.IsNegative() {
		total = valueobject.ZeroVND()
	}
	l.TotalPurchased = total
	l.Tier = TierFor(l.TotalPurchased)
	l.UpdatedAt = time.Now()
	l.IncrementVersion()
	return nil
}
