package flight

import (
	"fmt"
	"strings"
	"time"
)

const (
	dateLayout     = "2006-01-02"
	maxDaysAhead   = 365
	minPassengers  = 1
	maxPassengers  = 9
	iataCodeLength = 3
)

// Validation rule identifiers, in the order they are checked.
const (
	RuleRequired         = "required"
	RuleIATACode         = "iata_code"
	RuleSameAirport      = "same_airport"
	RuleDepartureDate    = "departure_date"
	RuleDepartureHorizon = "departure_horizon"
	RuleReturnDate       = "return_date"
	RulePassengers       = "passengers"
	RuleCabinClass       = "cabin_class"
)

// ValidationResult describes the first violated rule. An invalid request is an
// expected outcome, so it is reported as a value rather than an error.
type ValidationResult struct {
	Valid   bool   `json:"valid"`
	Rule    string `json:"rule,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message,omitempty"`
}

func invalid(rule, field, msg string) ValidationResult {
	return ValidationResult{Rule: rule, Field: field, Message: msg}
}

// Validate checks req against the calendar day of now.
func Validate(req SearchRequest, now time.Time) ValidationResult {
	origin := strings.TrimSpace(req.Origin)
	destination := strings.TrimSpace(req.Destination)
	departure := strings.TrimSpace(req.DepartureDate)

	switch {
	case origin == "":
		return invalid(RuleRequired, "origin", "origin is required")
	case destination == "":
		return invalid(RuleRequired, "destination", "destination is required")
	case departure == "":
		return invalid(RuleRequired, "departure_date", "departure date is required")
	}

	if !isIATACode(origin) {
		return invalid(RuleIATACode, "origin", fmt.Sprintf("origin %q is not a 3-letter airport code", origin))
	}
	if !isIATACode(destination) {
		return invalid(RuleIATACode, "destination", fmt.Sprintf("destination %q is not a 3-letter airport code", destination))
	}
	if strings.EqualFold(origin, destination) {
		return invalid(RuleSameAirport, "destination", "origin and destination must differ")
	}

	today := civilDay(now)
	depDate, err := time.ParseInLocation(dateLayout, departure, today.Location())
	if err != nil {
		return invalid(RuleDepartureDate, "departure_date", fmt.Sprintf("departure date %q must be YYYY-MM-DD", departure))
	}
	if depDate.Before(today) {
		return invalid(RuleDepartureDate, "departure_date", "departure date is in the past")
	}
	if depDate.After(today.AddDate(0, 0, maxDaysAhead)) {
		return invalid(RuleDepartureHorizon, "departure_date", fmt.Sprintf("departure date is more than %d days away", maxDaysAhead))
	}

	if ret := strings.TrimSpace(req.ReturnDate); ret != "" {
		retDate, err := time.ParseInLocation(dateLayout, ret, today.Location())
		if err != nil {
			return invalid(RuleReturnDate, "return_date", fmt.Sprintf("return date %q must be YYYY-MM-DD", ret))
		}
		if !retDate.After(depDate) {
			return invalid(RuleReturnDate, "return_date", "return date must be after the departure date")
		}
	}

	if req.Passengers < minPassengers || req.Passengers > maxPassengers {
		return invalid(RulePassengers, "passengers", fmt.Sprintf("passengers must be between %d and %d", minPassengers, maxPassengers))
	}

	if req.CabinClass != "" && !CabinClass(strings.ToLower(req.CabinClass)).Valid() {
		return invalid(RuleCabinClass, "cabin_class", fmt.Sprintf("unknown cabin class %q", req.CabinClass))
	}

	return ValidationResult{Valid: true}
}

func isIATACode(s string) bool {
	if len(s) != iataCodeLength {
		return false
	}
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') {
			return false
		}
	}
	return true
}

func civilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
