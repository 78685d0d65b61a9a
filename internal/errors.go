package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation        ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound          ErrorType = "NOT_FOUND"
	ErrorTypeForbidden         ErrorType = "FORBIDDEN"
	ErrorTypeInvalidState      ErrorType = "INVALID_STATE_TRANSITION"
	ErrorTypeGatewayUnresolved ErrorType = "GATEWAY_UNRESOLVED"
	ErrorTypeUnauthorized      ErrorType = "UNAUTHORIZED"
	ErrorTypeInternal          ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidAmount    ErrorCode = "INVALID_AMOUNT"
	ErrCodeInvalidMileage   ErrorCode = "INVALID_MILEAGE"
	ErrCodeInvalidBattery   ErrorCode = "INVALID_BATTERY_LEVEL"
	ErrCodeInvalidCondition ErrorCode = "INVALID_CONDITION_GRADE"
	ErrCodeInvalidMethod    ErrorCode = "INVALID_PAYMENT_METHOD"
	ErrCodeInvalidType      ErrorCode = "INVALID_PAYMENT_TYPE"
	ErrCodeReasonRequired   ErrorCode = "REASON_REQUIRED"
	ErrCodeSameMethod       ErrorCode = "SAME_PAYMENT_METHOD"

	ErrCodeRentalNotFound   ErrorCode = "RENTAL_NOT_FOUND"
	ErrCodeBookingNotFound  ErrorCode = "BOOKING_NOT_FOUND"
	ErrCodeContractNotFound ErrorCode = "CONTRACT_NOT_FOUND"
	ErrCodePaymentNotFound  ErrorCode = "PAYMENT_NOT_FOUND"

	ErrCodeRentalNotActive   ErrorCode = "RENTAL_NOT_ACTIVE"
	ErrCodePaymentNotPending ErrorCode = "PAYMENT_NOT_PENDING"

	ErrCodeContractMissing  ErrorCode = "CONTRACT_MISSING"
	ErrCodeContractUnsigned ErrorCode = "CONTRACT_UNSIGNED"

	ErrCodeCallbackIncomplete ErrorCode = "CALLBACK_INCOMPLETE"

	ErrCodeInvalidToken ErrorCode = "INVALID_TOKEN"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok {
			if len(validationErrors.Errors) == 1 {
				return validationErrors.Errors[0].Message
			} else if len(validationErrors.Errors) > 1 {
				messages := make([]string, len(validationErrors.Errors))
				for i, err := range validationErrors.Errors {
					messages[i] = err.Message
				}
				return strings.Join(messages, "; ")
			}
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

// NewInvalidStateError reports an operation attempted on a resource that is
// not in the required state. The current state travels in Details so the
// caller can explain the rejection.
func NewInvalidStateError(message string, code ErrorCode, currentState string) *AppError {
	return &AppError{
		Type:       ErrorTypeInvalidState,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
		Details:    map[string]string{"current_state": currentState},
	}
}

// NewGatewayUnresolvedError marks a gateway callback that cannot be
// classified yet. The customer may still be mid-flow, so the caller should
// treat it as "try again later" and re-invoke once more parameters arrive.
func NewGatewayUnresolvedError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeGatewayUnresolved,
		Code:       ErrCodeCallbackIncomplete,
		Message:    message,
		StatusCode: http.StatusAccepted,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

var (
	ErrRentalNotFound   = NewNotFoundError("Rental not found", ErrCodeRentalNotFound)
	ErrBookingNotFound  = NewNotFoundError("Booking not found", ErrCodeBookingNotFound)
	ErrContractNotFound = NewNotFoundError("Contract not found", ErrCodeContractNotFound)
	ErrPaymentNotFound  = NewNotFoundError("Payment not found", ErrCodePaymentNotFound)

	ErrInvalidToken = NewUnauthorizedError("Invalid token", ErrCodeInvalidToken)
)

func IsAppError(err error) (*AppError, bool) {
	if appErr, ok := err.(*AppError); ok {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
