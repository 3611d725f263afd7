package model

import "fmt"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Code    string         `json:"code,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeOrderNotFound     = "ORDER_NOT_FOUND"
	ErrCodeProductNotFound   = "PRODUCT_NOT_FOUND"
	ErrCodeCartItemNotFound  = "CART_ITEM_NOT_FOUND"
	ErrCodeInvalidStatus     = "INVALID_STATUS"
	ErrCodeIllegalTransition = "ILLEGAL_TRANSITION"
	ErrCodeInsufficientStock = "INSUFFICIENT_STOCK"
	ErrCodeCartEmpty         = "CART_EMPTY"
	ErrCodeMissingField      = "MISSING_FIELD"
	ErrCodeInvalidQuantity   = "INVALID_QUANTITY"
	ErrCodeInvalidPromoCode  = "INVALID_PROMO_CODE"
	ErrCodeValidationFailed  = "VALIDATION_FAILED"
	ErrCodeInvalidJSON       = "INVALID_JSON"
	ErrCodeUnauthorised      = "UNAUTHORIZED"
	ErrCodeForbidden         = "FORBIDDEN"
	ErrCodeConflict          = "CONFLICT"
	ErrCodeOrderUpdateFailed = "ORDER_UPDATE_FAILED"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// DomainError is a business rule failure that maps onto a client-facing response.
// Two domain errors match under errors.Is when their codes are equal.
type DomainError struct {
	Code    string
	Message string
	Details map[string]any
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is a DomainError with the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetail returns a copy of the error carrying an extra detail entry.
func (e *DomainError) WithDetail(key string, value any) *DomainError {
	details := make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	return &DomainError{Code: e.Code, Message: e.Message, Details: details}
}

// Common domain errors
var (
	ErrNotFound          = NewDomainError(ErrCodeNotFound, "Resource not found")
	ErrOrderNotFound     = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrProductNotFound   = NewDomainError(ErrCodeProductNotFound, "Product not found")
	ErrCartItemNotFound  = NewDomainError(ErrCodeCartItemNotFound, "Cart item not found")
	ErrCartEmpty         = NewDomainError(ErrCodeCartEmpty, "Cart is empty")
	ErrInvalidQuantity   = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrInvalidPromoCode  = NewDomainError(ErrCodeInvalidPromoCode, "Promo code is not valid")
	ErrUnauthorised      = NewDomainError(ErrCodeUnauthorised, "Authentication required")
	ErrBadCredentials    = NewDomainError(ErrCodeUnauthorised, "Invalid email or password")
	ErrForbidden         = NewDomainError(ErrCodeForbidden, "Insufficient permissions")
	ErrOrderUpdateFailed = NewDomainError(ErrCodeOrderUpdateFailed, "Failed to update order")
	ErrInvalidStatus     = NewDomainError(ErrCodeInvalidStatus, "Invalid status")
	ErrIllegalTransition = NewDomainError(ErrCodeIllegalTransition, "Order cannot be changed in its current status")
	ErrInsufficientStock = NewDomainError(ErrCodeInsufficientStock, "Insufficient stock")
	ErrMissingField      = NewDomainError(ErrCodeMissingField, "Missing required field")
	ErrValidation        = NewDomainError(ErrCodeValidationFailed, "Validation failed")
	ErrConflict          = NewDomainError(ErrCodeConflict, "Resource already exists")
)

// NewInvalidStatus reports an unknown status value together with the accepted ones.
func NewInvalidStatus(valid []string) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidStatus,
		Message: "Invalid status",
		Details: map[string]any{"valid_statuses": valid},
	}
}

// NewIllegalTransition reports an operation refused because of the order's current status.
func NewIllegalTransition(current OrderStatus) *DomainError {
	return &DomainError{
		Code:    ErrCodeIllegalTransition,
		Message: fmt.Sprintf("Order cannot be cancelled in status %s", current),
		Details: map[string]any{"current_status": string(current)},
	}
}

// NewInsufficientStock reports a requested quantity above what is on hand.
func NewInsufficientStock(available int) *DomainError {
	return &DomainError{
		Code:    ErrCodeInsufficientStock,
		Message: "Insufficient stock",
		Details: map[string]any{"available_stock": available},
	}
}

// NewMissingField reports a required request field that was absent or empty.
func NewMissingField(field string) *DomainError {
	return &DomainError{
		Code:    ErrCodeMissingField,
		Message: fmt.Sprintf("%s is required", field),
		Details: map[string]any{"field": field},
	}
}

// NewValidationError reports malformed input.
func NewValidationError(message string) *DomainError {
	return NewDomainError(ErrCodeValidationFailed, message)
}

// NewConflict reports a uniqueness violation.
func NewConflict(message string) *DomainError {
	return NewDomainError(ErrCodeConflict, message)
}
