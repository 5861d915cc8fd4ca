package stock

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// Deduction is one step of a reservation plan: take Quantity units from the
// record at LocationID.
type Deduction struct {
	RecordID   uuid.UUID       `json:"record_id"`
	LocationID uuid.UUID       `json:"location_id"`
	Quantity   decimal.Decimal `json:"quantity"`
}

// Restock is one step of a release plan: return Quantity units to the record
// at LocationID.
type Restock struct {
	RecordID   uuid.UUID       `json:"record_id"`
	LocationID uuid.UUID       `json:"location_id"`
	Quantity   decimal.Decimal `json:"quantity"`
}

// PlanReservation computes the multi-location deduction plan for a single
// reservation. Candidate records are consumed greedily in descending order of
// available quantity, so depletion concentrates in already-large stockpiles
// and small regional stockpiles stay intact longer.
//
// The function is pure: it inspects balances but applies nothing. If the
// combined supply cannot satisfy the requirement it returns
// InsufficientStock and an empty plan, so the caller commits either the full
// plan or nothing at all.
func PlanReservation(productID uuid.UUID, records []*StockRecord, required decimal.Decimal) ([]Deduction, error) {
	if required.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Reservation quantity must be positive")
	}

	candidates := sortedByQuantity(records, descending)

	available := decimal.Zero
	for _, r := range candidates {
		available = available.Add(r.Quantity)
	}
	if available.LessThan(required) {
		return nil, NewInsufficientStockError(productID, required, available)
	}

	plan := make([]Deduction, 0, len(candidates))
	remaining := required
	for _, r := range candidates {
		if remaining.IsZero() {
			break
		}
		if r.Quantity.IsZero() {
			continue
		}
		take := decimal.Min(r.Quantity, remaining)
		plan = append(plan, Deduction{
			RecordID:   r.ID,
			LocationID: r.LocationID,
			Quantity:   take,
		})
		remaining = remaining.Sub(take)
	}

	return plan, nil
}

// PlanRelease computes the multi-location restock plan for returning quantity
// units of a product. Stock flows to the location with the smallest current
// balance first, which spreads availability instead of over-concentrating it.
// Where a location has a high-threshold ceiling the plan splits across
// locations rather than overshoot it; if every bounded location is already
// full the remainder still lands on the smallest location, since releases
// must never be lost.
func PlanRelease(records []*StockRecord, quantity decimal.Decimal) ([]Restock, error) {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Release quantity must be positive")
	}
	if len(records) == 0 {
		return nil, shared.NewDomainError("NO_LOCATIONS", "No stock records exist for the product")
	}

	candidates := sortedByQuantity(records, ascending)

	plan := make([]Restock, 0, len(candidates))
	remaining := quantity
	for _, r := range candidates {
		if remaining.IsZero() {
			break
		}
		give := remaining
		if capacity, bounded := r.RemainingCapacity(); bounded {
			give = decimal.Min(give, capacity)
		}
		if give.IsZero() {
			continue
		}
		plan = append(plan, Restock{
			RecordID:   r.ID,
			LocationID: r.LocationID,
			Quantity:   give,
		})
		remaining = remaining.Sub(give)
	}

	if remaining.GreaterThan(decimal.Zero) {
		// Everything is at its ceiling; overflow onto the smallest location.
		overflow := candidates[0]
		if len(plan) > 0 && plan[0].RecordID == overflow.ID {
			plan[0].Quantity = plan[0].Quantity.Add(remaining)
		} else {
			plan = append([]Restock{{
				RecordID:   overflow.ID,
				LocationID: overflow.LocationID,
				Quantity:   remaining,
			}}, plan...)
		}
	}

	return plan, nil
}

type sortOrder int

const (
	ascending sortOrder = iota
	descending
)

// sortedByQuantity returns a sorted copy so planners never reorder the
// caller's slice. Ties break on location ID for deterministic plans.
func sortedByQuantity(records []*StockRecord, order sortOrder) []*StockRecord {
	sorted := make([]*StockRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.Quantity.Equal(b.Quantity) {
			if order == descending {
				return a.Quantity.GreaterThan(b.Quantity)
			}
			return a.Quantity.LessThan(b.Quantity)
		}
		return a.LocationID.String() < b.LocationID.String()
	})
	return sorted
}
