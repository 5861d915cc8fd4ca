package stock

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AllocationService is a domain service that applies allocation plans across
// multiple stock records. Either every step of a plan applies or none do:
// a failure part-way through compensates the already-applied steps before
// returning, so records are never left half-reserved.
//
// The service mutates in-memory aggregates only; persistence and transaction
// boundaries belong to the application layer.
type AllocationService struct{}

// NewAllocationService creates a new allocation service
func NewAllocationService() *AllocationService {
	return &AllocationService{}
}

// Reserve plans and applies a multi-location deduction for the product. On
// any step failure the applied steps are rolled back and the error returned.
func (s *AllocationService) Reserve(productID uuid.UUID, records []*StockRecord, required decimal.Decimal) ([]Deduction, error) {
	plan, err := PlanReservation(productID, records, required)
	if err != nil {
		return nil, err
	}

	byID := recordsByID(records)
	applied := make([]Deduction, 0, len(plan))
	for _, step := range plan {
		record := byID[step.RecordID]
		if err := record.Deduct(step.Quantity); err != nil {
			s.compensateDeductions(byID, applied)
			return nil, err
		}
		applied = append(applied, step)
	}

	return applied, nil
}

// Release plans and applies a multi-location restock for the product
func (s *AllocationService) Release(records []*StockRecord, quantity decimal.Decimal) ([]Restock, error) {
	plan, err := PlanRelease(records, quantity)
	if err != nil {
		return nil, err
	}

	byID := recordsByID(records)
	applied := make([]Restock, 0, len(plan))
	for _, step := range plan {
		record := byID[step.RecordID]
		if err := record.Restock(step.Quantity); err != nil {
			s.compensateRestocks(byID, applied)
			return nil, err
		}
		applied = append(applied, step)
	}

	return applied, nil
}

// Transfer moves quantity between two locations of the same product
func (s *AllocationService) Transfer(from, to *StockRecord, quantity decimal.Decimal) error {
	if err := from.Deduct(quantity); err != nil {
		return err
	}
	if err := to.Restock(quantity); err != nil {
		// Undo the deduction so the pair stays balanced.
		_ = from.Restock(quantity)
		return err
	}

	from.AddDomainEvent(NewStockTransferredEvent(from.ProductID, from.LocationID, to.LocationID, quantity))
	return nil
}

func (s *AllocationService) compensateDeductions(byID map[uuid.UUID]*StockRecord, applied []Deduction) {
	for _, step := range applied {
		_ = byID[step.RecordID].Restock(step.Quantity)
	}
}

func (s *AllocationService) compensateRestocks(byID map[uuid.UUID]*StockRecord, applied []Restock) {
	for _, step := range applied {
		_ = byID[step.RecordID].Deduct(step.Quantity)
	}
}

func recordsByID(records []*StockRecord) map[uuid.UUID]*StockRecord {
	byID := make(map[uuid.UUID]*StockRecord, len(records))
	for _, r := range records {
		byID[r.ID] = r
	}
	return byID
}
