package checkout

import (
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// AddressRequest is the shipping address payload of a checkout
type AddressRequest struct {
	Recipient  string `json:"recipient" binding:"required"`
	Phone      string `json:"phone" binding:"required"`
	Line1      string `json:"line1" binding:"required"`
	Line2      string `json:"line2"`
	City       string `json:"city" binding:"required"`
	Region     string `json:"region" binding:"required"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// ToAddress converts the payload into the address value object
func (r AddressRequest) ToAddress() (valueobject.Address, error) {
	var opts []valueobject.AddressOption
	if r.Line2 != "" {
		opts = append(opts, valueobject.WithLine2(r.Line2))
	}
	if r.PostalCode != "" {
		opts = append(opts, valueobject.WithPostalCode(r.PostalCode))
	}
	if r.Country != "" {
		opts = append(opts, valueobject.WithCountry(r.Country))
	}
	return valueobject.NewAddress(r.Recipient, r.Phone, r.Line1, r.City, r.Region, opts...)
}

// PlaceOrderRequest is the checkout payload
type PlaceOrderRequest struct {
	Address       AddressRequest `json:"address" binding:"required"`
	PaymentMethod string         `json:"payment_method" binding:"required"`
	CouponCode    string         `json:"coupon_code"`
}
