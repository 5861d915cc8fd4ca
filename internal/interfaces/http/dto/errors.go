package dto

import "net/http"

// Transport-level error codes
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "UNAUTHORIZED"
	// ErrCodeForbidden is used when the user lacks permission
	ErrCodeForbidden = "FORBIDDEN"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "NOT_FOUND"
)

// errorCodeHTTPStatus maps domain error codes to HTTP status codes.
// Codes describing a well-formed request the business rejected map to 422,
// conflicts of optimistic concurrency to 409, malformed input to 400.
var errorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:     http.StatusInternalServerError,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeNotFound:     http.StatusNotFound,

	"CONCURRENCY_CONFLICT": http.StatusConflict,
	"ALREADY_EXISTS":       http.StatusConflict,

	"INVALID_INPUT": http.StatusBadRequest,

	"EMPTY_CART":               http.StatusUnprocessableEntity,
	"PRODUCT_UNAVAILABLE":      http.StatusUnprocessableEntity,
	"INSUFFICIENT_STOCK":       http.StatusUnprocessableEntity,
	"INVALID_COUPON":           http.StatusUnprocessableEntity,
	"ILLEGAL_STATE_TRANSITION": http.StatusUnprocessableEntity,

	"INVALID_QUANTITY":  http.StatusBadRequest,
	"INVALID_PRODUCT":   http.StatusBadRequest,
	"INVALID_LOCATION":  http.StatusBadRequest,
	"INVALID_USER":      http.StatusBadRequest,
	"INVALID_REASON":    http.StatusBadRequest,
	"INVALID_THRESHOLD": http.StatusBadRequest,
	"INVALID_ADDRESS":   http.StatusBadRequest,
	"INVALID_AMOUNT":    http.StatusBadRequest,
	"INVALID_ORDER":     http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes are treated as business rule rejections.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusUnprocessableEntity
}
