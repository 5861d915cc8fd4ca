package coupon

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/storefront/backend/internal/application/checkout"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/infrastructure/config"
)

// maxResponseSize caps the response body read from the coupon service (1MB)
const maxResponseSize = 1 * 1024 * 1024

// HTTPValidator validates coupon codes against an external coupon service
type HTTPValidator struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPValidator creates a validator for the configured coupon endpoint
func NewHTTPValidator(cfg config.CouponConfig) *HTTPValidator {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPValidator{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type validateRequest struct {
	Code     string `json:"code"`
	Subtotal string `json:"subtotal"`
	Currency string `json:"currency"`
}

type validateResponse struct {
	Valid    bool   `json:"valid"`
	Discount string `json:"discount"`
	Reason   string `json:"reason"`
}

// Validate posts the coupon code and order subtotal to the coupon service
// and returns the granted discount. A rejection from the service becomes an
// INVALID_COUPON domain error; transport failures surface as plain errors so
// the checkout can distinguish "rejected" from "unavailable".
func (v *HTTPValidator) Validate(ctx context.Context, code string, subtotal valueobject.Money) (valueobject.Money, error) {
	payload, err := json.Marshal(validateRequest{
		Code:     code,
		Subtotal: subtotal.Amount().String(),
		Currency: string(subtotal.Currency()),
	})
	if err != nil {
		return valueobject.Money{}, fmt.Errorf("failed to encode coupon request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.baseURL+"/validate", bytes.NewReader(payload))
	if err != nil {
		return valueobject.Money{}, fmt.Errorf("failed to build coupon request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return valueobject.Money{}, fmt.Errorf("coupon service unreachable: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return valueobject.Money{}, fmt.Errorf("failed to read coupon response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return valueobject.Money{}, fmt.Errorf("coupon service returned status %d", resp.StatusCode)
	}

	var result validateResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return valueobject.Money{}, fmt.Errorf("failed to decode coupon response: %w", err)
	}

	if !result.Valid {
		return valueobject.Money{}, checkout.NewInvalidCouponError(code, result.Reason)
	}

	discount, err := valueobject.NewMoneyFromString(result.Discount, subtotal.Currency())
	if err != nil {
		return valueobject.Money{}, fmt.Errorf("coupon service returned invalid discount %q: %w", result.Discount, err)
	}
	if discount.IsNegative() {
		return valueobject.Money{}, fmt.Errorf("coupon service returned negative discount %q", result.Discount)
	}

	return discount, nil
}

// Ensure HTTPValidator implements CouponValidator
var _ checkout.CouponValidator = (*HTTPValidator)(nil)
