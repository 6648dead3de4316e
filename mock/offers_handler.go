package main

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	localLayout = "2006-01-02T15:04:05"
	offerTTL    = 30 * time.Minute
)

type OfferRequestBody struct {
	Data struct {
		Slices []struct {
			Origin        string `json:"origin"`
			Destination   string `json:"destination"`
			DepartureDate string `json:"departure_date"`
		} `json:"slices"`
		Passengers []struct {
			Type string `json:"type"`
		} `json:"passengers"`
		CabinClass   string                       `json:"cabin_class"`
		PrivateFares map[string][]json.RawMessage `json:"private_fares"`
	} `json:"data"`
}

type Offer struct {
	ID            string  `json:"id"`
	TotalAmount   string  `json:"total_amount"`
	TotalCurrency string  `json:"total_currency"`
	ExpiresAt     string  `json:"expires_at"`
	Owner         Carrier `json:"owner"`
	Slices        []Slice `json:"slices"`
}

type Slice struct {
	Origin      Place     `json:"origin"`
	Destination Place     `json:"destination"`
	Duration    string    `json:"duration"`
	Segments    []Segment `json:"segments"`
}

type Segment struct {
	Origin                       Place    `json:"origin"`
	Destination                  Place    `json:"destination"`
	DepartingAt                  string   `json:"departing_at"`
	ArrivingAt                   string   `json:"arriving_at"`
	Duration                     string   `json:"duration"`
	MarketingCarrier             Carrier  `json:"marketing_carrier"`
	OperatingCarrier             Carrier  `json:"operating_carrier"`
	MarketingCarrierFlightNumber string   `json:"marketing_carrier_flight_number"`
	OperatingCarrierFlightNumber string   `json:"operating_carrier_flight_number"`
	Aircraft                     Aircraft `json:"aircraft"`
}

type Aircraft struct {
	Name string `json:"name"`
}

var aircraft = []string{"Airbus A320", "Airbus A321neo", "Airbus A350-900", "Boeing 737-800", "Boeing 787-9"}

var cabinMultiplier = map[string]float64{
	"economy":         1,
	"premium_economy": 1.6,
	"business":        3.2,
	"first":           5.5,
}

type offerStore struct {
	mu     sync.Mutex
	offers map[string]Offer
}

var store = &offerStore{offers: make(map[string]Offer)}

func (s *offerStore) put(o Offer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offers[o.ID] = o
}

func (s *offerStore) get(id string) (Offer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.offers[id]
	return o, ok
}

func OfferRequestHandler(w http.ResponseWriter, r *http.Request) {
	var body OfferRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "malformed_json", err.Error())
		return
	}
	req := body.Data
	if len(req.Slices) == 0 || len(req.Passengers) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_parameters", "slices and passengers are required")
		return
	}

	cabin := strings.ToLower(req.CabinClass)
	if cabin == "" {
		cabin = "economy"
	}
	multiplier, ok := cabinMultiplier[cabin]
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_parameters", "unknown cabin_class "+req.CabinClass)
		return
	}

	for _, sl := range req.Slices {
		_, okOrigin := findAirport(sl.Origin)
		_, okDest := findAirport(sl.Destination)
		if !okOrigin || !okDest {
			writeError(w, http.StatusUnprocessableEntity, "no_offers_found", "no offers for this route")
			return
		}
		if _, err := time.Parse("2006-01-02", sl.DepartureDate); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_parameters", "departure_date must be YYYY-MM-DD")
			return
		}
	}

	seedKey := fmt.Sprintf("%v|%s", req.Slices, cabin)
	h := fnv.New64a()
	h.Write([]byte(seedKey))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	passengers := float64(len(req.Passengers))
	now := time.Now().UTC()
	offers := make([]Offer, 0, len(carriers))

	for i, carrier := range carriers {
		if rng.Intn(4) == 0 {
			continue
		}

		offer := Offer{
			ID:            fmt.Sprintf("off_%016x%02d", h.Sum64(), i),
			TotalCurrency: "EUR",
			ExpiresAt:     now.Add(offerTTL).Format(time.RFC3339),
			Owner:         carrier,
		}

		total := 0.0
		for _, sl := range req.Slices {
			slice, price := buildSlice(rng, carrier, sl.Origin, sl.Destination, sl.DepartureDate)
			offer.Slices = append(offer.Slices, slice)
			total += price
		}
		if _, private := req.PrivateFares[carrier.IATACode]; private {
			total *= 0.85
		}
		offer.TotalAmount = fmt.Sprintf("%.2f", total*multiplier*passengers)

		store.put(offer)
		offers = append(offers, offer)
	}

	delay := 50 + rand.Intn(151)
	time.Sleep(time.Duration(delay) * time.Millisecond)

	writeJSON(w, http.StatusCreated, map[string]any{
		"data": map[string]any{
			"id":     fmt.Sprintf("orq_%016x", h.Sum64()),
			"offers": offers,
		},
	})
}

func OfferHandler(w http.ResponseWriter, r *http.Request) {
	offer, ok := store.get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "offer not found")
		return
	}

	expires, err := time.Parse(time.RFC3339, offer.ExpiresAt)
	if err == nil && time.Now().After(expires) {
		writeError(w, http.StatusConflict, "offer_no_longer_available", "offer has expired")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": offer})
}

// buildSlice produces a direct flight or a one-stop itinerary via the carrier's hub.
func buildSlice(rng *rand.Rand, carrier Carrier, originCode, destCode, date string) (Slice, float64) {
	origin, _ := findAirport(originCode)
	dest, _ := findAirport(destCode)

	originLoc := loadLocation(origin.TimeZone)
	day, _ := time.ParseInLocation("2006-01-02", date, originLoc)
	departAt := day.Add(time.Duration(6+rng.Intn(16))*time.Hour + time.Duration(rng.Intn(4)*15)*time.Minute)

	price := 80 + float64(rng.Intn(700))
	hub := hubs[carrier.IATACode]

	var segments []Segment
	if hub == "" || hub == originCode || hub == destCode || rng.Intn(2) == 0 {
		minutes := 60 + rng.Intn(600)
		segments = append(segments, buildSegment(rng, carrier, origin, dest, departAt, minutes))
	} else {
		via, _ := findAirport(hub)
		first := buildSegment(rng, carrier, origin, via, departAt, 60+rng.Intn(240))
		firstArrive := departAt.Add(parseMinutes(first.Duration))
		layover := time.Duration(45+rng.Intn(600)) * time.Minute
		second := buildSegment(rng, carrier, via, dest, firstArrive.Add(layover), 60+rng.Intn(480))
		segments = append(segments, first, second)
		price *= 0.8
	}

	lastArrive := arrivalOf(segments[len(segments)-1])
	return Slice{
		Origin:      origin,
		Destination: dest,
		Duration:    isoDuration(lastArrive.Sub(departAt)),
		Segments:    segments,
	}, price
}

func buildSegment(rng *rand.Rand, carrier Carrier, from, to Place, departAt time.Time, minutes int) Segment {
	arriveAt := departAt.Add(time.Duration(minutes) * time.Minute)
	number := fmt.Sprintf("%d", 100+rng.Intn(8900))

	seg := Segment{
		Origin:                       from,
		Destination:                  to,
		DepartingAt:                  departAt.In(loadLocation(from.TimeZone)).Format(localLayout),
		ArrivingAt:                   arriveAt.In(loadLocation(to.TimeZone)).Format(localLayout),
		Duration:                     isoDuration(time.Duration(minutes) * time.Minute),
		MarketingCarrier:             carrier,
		OperatingCarrier:             carrier,
		MarketingCarrierFlightNumber: number,
		OperatingCarrierFlightNumber: number,
		Aircraft:                     Aircraft{Name: aircraft[rng.Intn(len(aircraft))]},
	}

	// occasionally sold as a codeshare operated by a partner
	if rng.Intn(5) == 0 {
		partner := carriers[rng.Intn(len(carriers))]
		if partner.IATACode != carrier.IATACode {
			seg.OperatingCarrier = partner
			seg.OperatingCarrierFlightNumber = fmt.Sprintf("%d", 100+rng.Intn(8900))
		}
	}
	return seg
}

func arrivalOf(seg Segment) time.Time {
	t, _ := time.ParseInLocation(localLayout, seg.ArrivingAt, loadLocation(seg.Destination.TimeZone))
	return t
}

func loadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

func isoDuration(d time.Duration) string {
	total := int(d.Minutes())
	days, rem := total/(24*60), total%(24*60)
	if days > 0 {
		return fmt.Sprintf("P%dDT%dH%dM", days, rem/60, rem%60)
	}
	return fmt.Sprintf("PT%dH%dM", rem/60, rem%60)
}

func parseMinutes(iso string) time.Duration {
	var days, hours, minutes int
	if strings.Contains(iso, "D") {
		fmt.Sscanf(iso, "P%dDT%dH%dM", &days, &hours, &minutes)
	} else {
		fmt.Sscanf(iso, "PT%dH%dM", &hours, &minutes)
	}
	return time.Duration(days*24*60+hours*60+minutes) * time.Minute
}
