package order

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// GenerateOrderNumber produces a human-readable unique order number. The
// timestamp keeps numbers roughly sortable; the random suffix disambiguates
// orders placed within the same second. Uniqueness is ultimately enforced by
// the database constraint on the column.
func GenerateOrderNumber() string {
	return fmt.Sprintf("ORD-%s-%06d", time.Now().Format("20060102150405"), rand.IntN(1000000))
}

// GenerateTrackingNumber produces a carrier-style tracking number when the
// order ships without one assigned upstream
func GenerateTrackingNumber() string {
	return fmt.Sprintf("TRK-%s-%08d", time.Now().Format("20060102"), rand.IntN(100000000))
}
