package flightclient

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"corptravel/internal/flight"
)

const localTimeLayout = "2006-01-02T15:04:05"

var isoDurationPattern = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+(?:\.\d+)?)S)?)?$`)

// ToSearchResult maps an offer request response. Offers without an id or a readable
// total amount are skipped; everything else is kept with whatever could be derived.
func ToSearchResult(resp OfferRequestResponse, fingerprint string, fetchedAt time.Time) *flight.SearchResult {
	flights := make([]flight.Flight, 0, len(resp.Offers))
	for _, offer := range resp.Offers {
		if f, ok := ToFlight(offer); ok {
			flights = append(flights, f)
		}
	}

	return &flight.SearchResult{
		RequestFingerprint: fingerprint,
		OfferRequestID:     resp.ID,
		Flights:            flights,
		FetchedAt:          fetchedAt,
		TotalCount:         len(flights),
	}
}

// ToFlight maps one offer. ok is false when the offer cannot be priced or identified.
func ToFlight(offer OfferPayload) (flight.Flight, bool) {
	if strings.TrimSpace(offer.ID) == "" {
		return flight.Flight{}, false
	}
	amount, err := strconv.ParseFloat(strings.TrimSpace(offer.TotalAmount), 64)
	if err != nil {
		return flight.Flight{}, false
	}

	f := flight.Flight{
		ID: offer.ID,
		TotalPrice: flight.Price{
			Amount:   amount,
			Currency: strings.ToUpper(offer.TotalCurrency),
		},
		Slices: make([]flight.Slice, 0, len(offer.Slices)),
	}

	if t, err := time.Parse(time.RFC3339, offer.ExpiresAt); err == nil {
		f.ExpiresAt = &t
	}
	if offer.Owner != nil {
		owner := toAirline(offer.Owner)
		f.Owner = &owner
	}

	for _, s := range offer.Slices {
		f.Slices = append(f.Slices, toSlice(s))
	}
	return f, true
}

func toSlice(s SlicePayload) flight.Slice {
	out := flight.Slice{
		Origin:      placeCode(s.Origin),
		Destination: placeCode(s.Destination),
		Segments:    make([]flight.Segment, 0, len(s.Segments)),
	}

	for _, seg := range s.Segments {
		out.Segments = append(out.Segments, toSegment(seg))
	}

	if n := len(out.Segments); n > 0 {
		if out.Origin == "" {
			out.Origin = out.Segments[0].Origin
		}
		if out.Destination == "" {
			out.Destination = out.Segments[n-1].Destination
		}
	}

	out.DurationMinutes = parseISODuration(s.Duration)
	if out.DurationMinutes == nil && len(out.Segments) > 0 {
		out.DurationMinutes = minutesBetween(out.Segments[0].DepartAt, out.Segments[len(out.Segments)-1].ArriveAt)
	}

	out.Connections = connections(out.Segments)
	return out
}

func toSegment(seg SegmentPayload) flight.Segment {
	out := flight.Segment{
		Origin:      placeCode(seg.Origin),
		Destination: placeCode(seg.Destination),
		DepartAt:    parseLocalTime(seg.DepartingAt, seg.Origin),
		ArriveAt:    parseLocalTime(seg.ArrivingAt, seg.Destination),
	}

	carrier, number := resolveCarrier(seg)
	if carrier != nil {
		out.Airline = toAirline(carrier)
	}
	if number != "" {
		out.FlightNumber = out.Airline.Code + number
	}
	if seg.Aircraft != nil {
		out.Aircraft = seg.Aircraft.Name
	}

	out.DurationMinutes = parseISODuration(seg.Duration)
	if out.DurationMinutes == nil {
		out.DurationMinutes = minutesBetween(out.DepartAt, out.ArriveAt)
	}
	return out
}

// resolveCarrier prefers who actually flies the aircraft over who sold the seat.
func resolveCarrier(seg SegmentPayload) (*CarrierPayload, string) {
	if c := seg.OperatingCarrier; c != nil && (c.IATACode != "" || c.Name != "") {
		number := seg.OperatingCarrierFlightNumber
		if number == "" {
			number = seg.MarketingCarrierFlightNumber
		}
		return c, number
	}
	return seg.MarketingCarrier, seg.MarketingCarrierFlightNumber
}

func connections(segments []flight.Segment) []flight.Connection {
	if len(segments) < 2 {
		return nil
	}

	out := make([]flight.Connection, 0, len(segments)-1)
	for i := 1; i < len(segments); i++ {
		prev, next := segments[i-1], segments[i]
		conn := flight.Connection{
			Airport:         prev.Destination,
			DurationMinutes: minutesBetween(prev.ArriveAt, next.DepartAt),
		}
		if !prev.ArriveAt.IsZero() && !next.DepartAt.IsZero() {
			conn.Overnight = prev.ArriveAt.Format("2006-01-02") != next.DepartAt.Format("2006-01-02")
		}
		out = append(out, conn)
	}
	return out
}

func toAirline(c *CarrierPayload) flight.Airline {
	return flight.Airline{
		Code:    strings.ToUpper(c.IATACode),
		Name:    c.Name,
		LogoURL: c.LogoSymbolURL,
	}
}

func toAirport(p PlacePayload) flight.Airport {
	return flight.Airport{
		IATACode:    strings.ToUpper(p.IATACode),
		Name:        p.Name,
		CityName:    p.CityName,
		CountryCode: p.IATACountryCode,
		TimeZone:    p.TimeZone,
	}
}

func placeCode(p *PlacePayload) string {
	if p == nil {
		return ""
	}
	return strings.ToUpper(p.IATACode)
}

// parseLocalTime reads a wall-clock time in the place's zone, falling back to UTC.
// Values that already carry an offset keep it.
func parseLocalTime(value string, place *PlacePayload) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}

	loc := time.UTC
	if place != nil && place.TimeZone != "" {
		if l, err := time.LoadLocation(place.TimeZone); err == nil {
			loc = l
		}
	}
	t, err := time.ParseInLocation(localTimeLayout, value, loc)
	if err != nil {
		return time.Time{}
	}
	return t
}

// parseISODuration understands the day/hour/minute/second subset the provider uses,
// e.g. PT2H30M or P1DT2H.
func parseISODuration(value string) *uint32 {
	value = strings.TrimSpace(value)
	m := isoDurationPattern.FindStringSubmatch(value)
	if m == nil || value == "P" || strings.HasSuffix(value, "T") {
		return nil
	}

	var minutes float64
	units := []float64{24 * 60, 60, 1, 1.0 / 60}
	for i, unit := range units {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.ParseFloat(m[i+1], 64)
		if err != nil {
			return nil
		}
		minutes += n * unit
	}

	if minutes > math.MaxUint32 {
		return nil
	}
	v := uint32(minutes)
	return &v
}

func minutesBetween(from, to time.Time) *uint32 {
	if from.IsZero() || to.IsZero() || to.Before(from) {
		return nil
	}
	v := uint32(to.Sub(from).Minutes())
	return &v
}
