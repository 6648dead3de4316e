package flightclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"corptravel/internal/flight"
)

// statusCodes is the one place provider HTTP statuses become error kinds.
var statusCodes = map[int]flight.ErrorCode{
	http.StatusBadRequest:          flight.ErrorCodeValidation,
	http.StatusUnauthorized:        flight.ErrorCodeUnauthorized,
	http.StatusForbidden:           flight.ErrorCodeUnauthorized,
	http.StatusNotFound:            flight.ErrorCodeNotFound,
	http.StatusConflict:            flight.ErrorCodeOfferUnavailable,
	http.StatusUnprocessableEntity: flight.ErrorCodeBookingFailed,
	http.StatusTooManyRequests:     flight.ErrorCodeRateLimited,
}

func mapStatus(status int, body []byte) *flight.AppError {
	var env errorEnvelope
	_ = json.Unmarshal(body, &env)

	details := describeErrors(env, body)
	cause := fmt.Errorf("provider responded %d", status)

	for _, e := range env.Errors {
		if strings.Contains(strings.ToLower(e.Code), "no_offers") {
			return flight.NewAppError(flight.ErrorCodeNoOffers, details, cause)
		}
	}

	code, ok := statusCodes[status]
	if !ok {
		code = flight.ErrorCodeServer
	}
	return flight.NewAppError(code, details, cause)
}

func describeErrors(env errorEnvelope, body []byte) string {
	if len(env.Errors) == 0 {
		text := strings.TrimSpace(string(body))
		if len(text) > 512 {
			text = text[:512]
		}
		return text
	}

	parts := make([]string, 0, len(env.Errors))
	for _, e := range env.Errors {
		msg := e.Message
		if msg == "" {
			msg = e.Title
		}
		if e.Code != "" {
			msg = e.Code + ": " + msg
		}
		parts = append(parts, msg)
	}
	return strings.Join(parts, "; ")
}

func networkError(err error) *flight.AppError {
	return flight.NewAppError(flight.ErrorCodeNetwork, err.Error(), err)
}
