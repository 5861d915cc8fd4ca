package cart

import (
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// Pricing policy for checkout. Amounts are in the storefront's default
// currency.
var (
	// TaxRate is applied to the cart subtotal
	TaxRate = decimal.NewFromFloat(0.10)

	// FreeShippingThreshold waives the shipping fee at or above this subtotal
	FreeShippingThreshold = valueobject.NewMoneyVNDFromInt(500000)

	// FlatShippingFee is charged on every order below the threshold
	FlatShippingFee = valueobject.NewMoneyVNDFromInt(30000)
)

// PricedLine pairs a cart quantity with the effective unit price resolved
// from the catalog (discount price when set, list price otherwise)
type PricedLine struct {
	ProductID   string
	ProductName string
	Quantity    decimal.Decimal
	UnitPrice   valueobject.Money
}

// Totals is the fully computed price breakdown for a cart
type Totals struct {
	Subtotal valueobject.Money `json:"subtotal"`
	Tax      valueobject.Money `json:"tax"`
	Shipping valueobject.Money `json:"shipping"`
	Discount valueobject.Money `json:"discount"`
	Total    valueobject.Money `json:"total"`
}

// CalculateTotals computes the price breakdown for a set of priced lines and
// an externally validated coupon discount. The calculation is pure and
// idempotent: the same lines and discount always produce the same totals.
//
// subtotal = sum of quantity times effective unit price
// tax      = subtotal times TaxRate
// shipping = zero at or above FreeShippingThreshold, flat fee below
// total    = subtotal + tax + shipping - discount
func CalculateTotals(lines []PricedLine, discount valueobject.Money) (Totals, error) {
	subtotal := valueobject.ZeroVND()
	for _, line := range lines {
		if line.Quantity.LessThanOrEqual(decimal.Zero) {
			return Totals{}, shared.NewDomainError("INVALID_QUANTITY", "Line quantity must be positive")
		}
		lineTotal := line.UnitPrice.Mul(line.Quantity)
		var err error
		subtotal, err = subtotal.Add(lineTotal)
		if err != nil {
			return Totals{}, err
		}
	}

	tax := subtotal.Mul(TaxRate)

	shipping := valueobject.ZeroVND()
	if !subtotal.GreaterThanOrEqual(FreeShippingThreshold) {
		shipping = FlatShippingFee
	}

	if discount.IsNegative() {
		return Totals{}, shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot be negative")
	}

	total, err := subtotal.Add(tax)
	if err != nil {
		return Totals{}, err
	}
	total, err = total.Add(shipping)
	if err != nil {
		return Totals{}, err
	}
	total, err = total.Sub(discount)
	if err != nil {
		return Totals{}, err
	}
	if total.IsNegative() {
		total = valueobject.ZeroVND()
	}

	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Discount: discount,
		Total:    total,
	}, nil
}
