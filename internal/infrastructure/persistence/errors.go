package persistence

import (
	"errors"

	"gorm.io/gorm"

	"github.com/storefront/backend/internal/domain/shared"
)

// translateError maps a data-layer failure onto the domain error model.
// Record misses keep the not-found sentinel; anything else from the driver
// becomes a retryable PersistenceError, since the enclosing transaction has
// already been rolled back.
func translateError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	var persistErr *shared.PersistenceError
	if errors.As(err, &persistErr) {
		return err
	}
	return shared.NewPersistenceError(op, err)
}
