package model

import "net/http"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON       = "INVALID_JSON"
	ErrCodeMissingField      = "MISSING_FIELD"
	ErrCodeProductNotFound   = "PRODUCT_NOT_FOUND"
	ErrCodeVariantNotFound   = "VARIANT_NOT_FOUND"
	ErrCodeOrderNotFound     = "ORDER_NOT_FOUND"
	ErrCodeInvalidQuantity   = "INVALID_QUANTITY"
	ErrCodeUnknownAxis       = "UNKNOWN_AXIS"
	ErrCodeTooManyVariants   = "TOO_MANY_VARIANTS"
	ErrCodeDuplicateSlug     = "DUPLICATE_SLUG"
	ErrCodeDuplicateSKU      = "DUPLICATE_SKU"
	ErrCodeProductReferenced = "PRODUCT_REFERENCED"
	ErrCodeUnauthorised      = "UNAUTHORIZED"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// DomainError is a business-rule failure that maps onto one HTTP status.
type DomainError struct {
	Code    string
	Message string
	Status  int
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewValidationError creates a client-correctable 400 error.
func NewValidationError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message, Status: http.StatusBadRequest}
}

// NewNotFoundError creates a 404 error.
func NewNotFoundError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message, Status: http.StatusNotFound}
}

// NewConflictError creates a 409 error.
func NewConflictError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message, Status: http.StatusConflict}
}

// Common domain errors
var (
	ErrProductNotFound   = NewNotFoundError(ErrCodeProductNotFound, "Product not found")
	ErrVariantNotFound   = NewNotFoundError(ErrCodeVariantNotFound, "Variant not found")
	ErrOrderNotFound     = NewNotFoundError(ErrCodeOrderNotFound, "Order not found")
	ErrMissingName       = NewValidationError(ErrCodeMissingField, "Product name is required")
	ErrMissingMainImage  = NewValidationError(ErrCodeMissingField, "Main image is required")
	ErrMissingAxes       = NewValidationError(ErrCodeMissingField, "At least one option axis is required")
	ErrMissingUserID     = NewValidationError(ErrCodeMissingField, "User ID is required")
	ErrMissingVariantID  = NewValidationError(ErrCodeMissingField, "Every order line must reference a variant")
	ErrNoOrderItems      = NewValidationError(ErrCodeMissingField, "Order must contain at least one item")
	ErrInvalidQuantity   = NewValidationError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrDuplicateSlug     = NewConflictError(ErrCodeDuplicateSlug, "A product with this slug already exists")
	ErrDuplicateSKU      = NewConflictError(ErrCodeDuplicateSKU, "A variant with this SKU already exists")
	ErrProductReferenced = NewConflictError(ErrCodeProductReferenced, "Product is referenced by existing orders")
)
