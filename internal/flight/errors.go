package flight

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrorCodeValidation       ErrorCode = "VALIDATION_ERROR"
	ErrorCodeRateLimited      ErrorCode = "RATE_LIMITED"
	ErrorCodeUnauthorized     ErrorCode = "UNAUTHORIZED"
	ErrorCodeNotFound         ErrorCode = "NOT_FOUND"
	ErrorCodeOfferUnavailable ErrorCode = "OFFER_UNAVAILABLE"
	ErrorCodeBookingFailed    ErrorCode = "BOOKING_FAILED"
	ErrorCodeNetwork          ErrorCode = "NETWORK_ERROR"
	ErrorCodeServer           ErrorCode = "SERVER_ERROR"
	ErrorCodeNoOffers         ErrorCode = "NO_OFFERS"
	ErrorCodeInternalFailure  ErrorCode = "INTERNAL_FAILURE"
)

var userMessages = map[ErrorCode]string{
	ErrorCodeValidation:       "Please check your search details and try again.",
	ErrorCodeRateLimited:      "Too many searches. Please wait a moment and try again.",
	ErrorCodeUnauthorized:     "The flight provider rejected our credentials. Please contact support.",
	ErrorCodeNotFound:         "The requested flight information could not be found.",
	ErrorCodeOfferUnavailable: "This offer is no longer available. Please search again.",
	ErrorCodeBookingFailed:    "The booking could not be completed.",
	ErrorCodeNetwork:          "Could not reach the flight provider. Check your connection and try again.",
	ErrorCodeServer:           "The flight provider is having problems. Please try again later.",
	ErrorCodeNoOffers:         "No flights were found for this search.",
	ErrorCodeInternalFailure:  "Something went wrong. Please try again.",
}

var httpStatuses = map[ErrorCode]int{
	ErrorCodeValidation:       http.StatusBadRequest,
	ErrorCodeRateLimited:      http.StatusTooManyRequests,
	ErrorCodeUnauthorized:     http.StatusBadGateway,
	ErrorCodeNotFound:         http.StatusNotFound,
	ErrorCodeOfferUnavailable: http.StatusConflict,
	ErrorCodeBookingFailed:    http.StatusUnprocessableEntity,
	ErrorCodeNetwork:          http.StatusServiceUnavailable,
	ErrorCodeServer:           http.StatusBadGateway,
	ErrorCodeNoOffers:         http.StatusOK,
	ErrorCodeInternalFailure:  http.StatusInternalServerError,
}

// UserMessage is the short text shown for an error kind.
func UserMessage(code ErrorCode) string {
	if msg, ok := userMessages[code]; ok {
		return msg
	}
	return userMessages[ErrorCodeInternalFailure]
}

// HTTPStatus is the status our own API answers with for an error kind.
func HTTPStatus(code ErrorCode) int {
	if status, ok := httpStatuses[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// AppError carries an error kind through the pipeline. Details holds raw diagnostic
// text (provider messages, validation reasons) and is only shown outside production.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Status  int       `json:"-"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	// Field and Rule name the rejected input of a validation error. They never carry
	// provider text and are shown in every environment.
	Field string `json:"field,omitempty"`
	Rule  string `json:"rule,omitempty"`
	Err   error  `json:"-"`
}

func NewAppError(code ErrorCode, details string, err error) *AppError {
	return &AppError{
		Code:    code,
		Status:  HTTPStatus(code),
		Message: UserMessage(code),
		Details: details,
		Err:     err,
	}
}

func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Details)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return string(e.Code)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Redacted drops diagnostic details.
func (e *AppError) Redacted() *AppError {
	if e == nil {
		return nil
	}
	cp := *e
	cp.Details = ""
	return &cp
}

// CodeOf returns the kind of err, or INTERNAL_FAILURE when err carries none.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrorCodeInternalFailure
}

func validationError(v ValidationResult) *AppError {
	appErr := NewAppError(ErrorCodeValidation, v.Message, nil)
	appErr.Field = v.Field
	appErr.Rule = v.Rule
	return appErr
}
