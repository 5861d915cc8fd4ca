package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Address is a value object holding the shipping address snapshot that is
// frozen onto an order at placement time. It is immutable.
type Address struct {
	recipient  string
	phone      string
	line1      string
	line2      string
	city       string
	region     string
	postalCode string
	country    string
}

// AddressOption is a functional option for configuring Address
type AddressOption func(*Address)

// WithLine2 sets the secondary address line
func WithLine2(line2 string) AddressOption {
	return func(a *Address) {
		a.line2 = strings.TrimSpace(line2)
	}
}

// WithPostalCode sets the postal code
func WithPostalCode(postalCode string) AddressOption {
	return func(a *Address) {
		a.postalCode = strings.TrimSpace(postalCode)
	}
}

// WithCountry sets the country
func WithCountry(country string) AddressOption {
	return func(a *Address) {
		a.country = strings.TrimSpace(country)
	}
}

// NewAddress creates a new Address. Recipient, phone, line1 and city are
// required; the rest is optional.
func NewAddress(recipient, phone, line1, city, region string, opts ...AddressOption) (Address, error) {
	recipient = strings.TrimSpace(recipient)
	phone = strings.TrimSpace(phone)
	line1 = strings.TrimSpace(line1)
	city = strings.TrimSpace(city)
	region = strings.TrimSpace(region)

	if recipient == "" {
		return Address{}, errors.New("recipient cannot be empty")
	}
	if len(recipient) > 200 {
		return Address{}, errors.New("recipient cannot exceed 200 characters")
	}
	if phone == "" {
		return Address{}, errors.New("phone cannot be empty")
	}
	if line1 == "" {
		return Address{}, errors.New("address line cannot be empty")
	}
	if len(line1) > 500 {
		return Address{}, errors.New("address line cannot exceed 500 characters")
	}
	if city == "" {
		return Address{}, errors.New("city cannot be empty")
	}

	addr := Address{
		recipient: recipient,
		phone:     phone,
		line1:     line1,
		city:      city,
		region:    region,
	}
	for _, opt := range opts {
		opt(&addr)
	}
	return addr, nil
}

// Recipient returns the recipient name
func (a Address) Recipient() string { return a.recipient }

// Phone returns the contact phone number
func (a Address) Phone() string { return a.phone }

// Line1 returns the primary address line
func (a Address) Line1() string { return a.line1 }

// Line2 returns the secondary address line
func (a Address) Line2() string { return a.line2 }

// City returns the city
func (a Address) City() string { return a.city }

// Region returns the province or state
func (a Address) Region() string { return a.region }

// PostalCode returns the postal code
func (a Address) PostalCode() string { return a.postalCode }

// Country returns the country
func (a Address) Country() string { return a.country }

// IsEmpty returns true if this is a zero Address
func (a Address) IsEmpty() bool {
	return a.recipient == "" && a.line1 == ""
}

// Equals returns true if all fields match
func (a Address) Equals(other Address) bool {
	return a == other
}

// String returns a single-line rendering suitable for labels and logs
func (a Address) String() string {
	parts := []string{a.line1}
	if a.line2 != "" {
		parts = append(parts, a.line2)
	}
	parts = append(parts, a.city)
	if a.region != "" {
		parts = append(parts, a.region)
	}
	if a.postalCode != "" {
		parts = append(parts, a.postalCode)
	}
	if a.country != "" {
		parts = append(parts, a.country)
	}
	return fmt.Sprintf("%s (%s), %s", a.recipient, a.phone, strings.Join(parts, ", "))
}

// addressJSON is the serialized form used for both JSON and database storage
type addressJSON struct {
	Recipient  string `json:"recipient"`
	Phone      string `json:"phone"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	Region     string `json:"region,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

// MarshalJSON implements json.Marshaler
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(addressJSON{
		Recipient:  a.recipient,
		Phone:      a.phone,
		Line1:      a.line1,
		Line2:      a.line2,
		City:       a.city,
		Region:     a.region,
		PostalCode: a.postalCode,
		Country:    a.country,
	})
}

// UnmarshalJSON implements json.Unmarshaler
func (a *Address) UnmarshalJSON(data []byte) error {
	var v addressJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	a.recipient = v.Recipient
	a.phone = v.Phone
	a.line1 = v.Line1
	a.line2 = v.Line2
	a.city = v.City
	a.region = v.Region
	a.postalCode = v.PostalCode
	a.country = v.Country
	return nil
}

// Value implements driver.Valuer: the address is stored as a JSON column
func (a Address) Value() (driver.Value, error) {
	return json.Marshal(a)
}

// Scan implements sql.Scanner
func (a *Address) Scan(value interface{}) error {
	if value == nil {
		*a = Address{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	default:
		return fmt.Errorf("cannot scan %T into Address", value)
	}
}
