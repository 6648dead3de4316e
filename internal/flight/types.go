package flight

import "time"

type CabinClass string

const (
	CabinEconomy        CabinClass = "economy"
	CabinPremiumEconomy CabinClass = "premium_economy"
	CabinBusiness       CabinClass = "business"
	CabinFirst          CabinClass = "first"
)

func (c CabinClass) Valid() bool {
	switch c {
	case CabinEconomy, CabinPremiumEconomy, CabinBusiness, CabinFirst:
		return true
	}
	return false
}

type LoyaltyAccount struct {
	AirlineIATACode string `json:"airline_iata_code"`
	AccountNumber   string `json:"account_number"`
}

// SearchRequest is what the user asked for. ReturnDate is empty for one-way trips.
type SearchRequest struct {
	Origin          string           `json:"origin"`
	Destination     string           `json:"destination"`
	DepartureDate   string           `json:"departure_date"`
	ReturnDate      string           `json:"return_date,omitempty"`
	Passengers      uint32           `json:"passengers"`
	CabinClass      string           `json:"cabin_class,omitempty"`
	LoyaltyAccounts []LoyaltyAccount `json:"loyalty_accounts,omitempty"`
	CorporateFares  bool             `json:"corporate_fares,omitempty"`
}

func (r SearchRequest) IsRoundTrip() bool {
	return r.ReturnDate != ""
}

type Price struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

type Airline struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	LogoURL string `json:"logo_url,omitempty"`
}

type Airport struct {
	IATACode    string `json:"iata_code"`
	Name        string `json:"name"`
	CityName    string `json:"city_name,omitempty"`
	CountryCode string `json:"country_code,omitempty"`
	TimeZone    string `json:"time_zone,omitempty"`
}

// Segment is one operated flight. Times carry the local zone of their airport.
type Segment struct {
	Origin          string    `json:"origin"`
	Destination     string    `json:"destination"`
	DepartAt        time.Time `json:"depart_at"`
	ArriveAt        time.Time `json:"arrive_at"`
	Airline         Airline   `json:"airline"`
	FlightNumber    string    `json:"flight_number"`
	Aircraft        string    `json:"aircraft,omitempty"`
	DurationMinutes *uint32   `json:"duration_minutes,omitempty"`
}

// Connection is the ground time between two consecutive segments of a slice.
type Connection struct {
	Airport         string  `json:"airport"`
	DurationMinutes *uint32 `json:"duration_minutes,omitempty"`
	Overnight       bool    `json:"overnight"`
}

// Slice is one directional leg (outbound or return).
type Slice struct {
	Origin          string       `json:"origin"`
	Destination     string       `json:"destination"`
	DurationMinutes *uint32      `json:"duration_minutes,omitempty"`
	Segments        []Segment    `json:"segments"`
	Connections     []Connection `json:"connections,omitempty"`
}

func (s Slice) Stops() int {
	if len(s.Segments) == 0 {
		return 0
	}
	return len(s.Segments) - 1
}

// Flight is a normalized offer.
type Flight struct {
	ID         string     `json:"id"`
	TotalPrice Price      `json:"total_price"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	Owner      *Airline   `json:"owner,omitempty"`
	Slices     []Slice    `json:"slices"`
}

// Stops is the worst slice: a round trip with a direct outbound and a one-stop return has 1 stop.
func (f Flight) Stops() int {
	max := 0
	for _, s := range f.Slices {
		if n := s.Stops(); n > max {
			max = n
		}
	}
	return max
}

// TotalStops sums stops over all slices.
func (f Flight) TotalStops() int {
	total := 0
	for _, s := range f.Slices {
		total += s.Stops()
	}
	return total
}

// TotalDurationMinutes sums slice durations; slices with an unknown duration count as zero.
func (f Flight) TotalDurationMinutes() uint32 {
	var total uint32
	for _, s := range f.Slices {
		if s.DurationMinutes != nil {
			total += *s.DurationMinutes
		}
	}
	return total
}

// Outbound returns the first slice, if any.
func (f Flight) Outbound() (Slice, bool) {
	if len(f.Slices) == 0 {
		return Slice{}, false
	}
	return f.Slices[0], true
}

// Airlines lists the resolved carriers of every segment, falling back to the offer owner.
func (f Flight) Airlines() []Airline {
	var out []Airline
	for _, s := range f.Slices {
		for _, seg := range s.Segments {
			out = append(out, seg.Airline)
		}
	}
	if len(out) == 0 && f.Owner != nil {
		out = append(out, *f.Owner)
	}
	return out
}

func (f Flight) Expired(now time.Time) bool {
	return f.ExpiresAt != nil && !now.Before(*f.ExpiresAt)
}

type SearchResult struct {
	RequestFingerprint string    `json:"request_fingerprint"`
	OfferRequestID     string    `json:"offer_request_id,omitempty"`
	Flights            []Flight  `json:"flights"`
	FetchedAt          time.Time `json:"fetched_at"`
	TotalCount         int       `json:"total_count"`
	FromCache          bool      `json:"from_cache"`
}

// PriceRange is an inclusive band; a nil bound is open.
type PriceRange struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

func (r PriceRange) Contains(v float64) bool {
	return (r.Min == nil || v >= *r.Min) && (r.Max == nil || v <= *r.Max)
}

// TimeRange bounds a local time of day, "HH:MM" inclusive. From after To wraps past midnight.
type TimeRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// DurationRange bounds total minutes inclusively; a nil bound is open.
type DurationRange struct {
	Min *uint32 `json:"min,omitempty"`
	Max *uint32 `json:"max,omitempty"`
}

func (r DurationRange) Contains(minutes uint32) bool {
	return (r.Min == nil || minutes >= *r.Min) && (r.Max == nil || minutes <= *r.Max)
}

// FilterState is the active narrowing of a result set. The zero value constrains nothing.
type FilterState struct {
	Airlines      []string       `json:"airlines,omitempty"`
	MaxStops      *uint32        `json:"max_stops,omitempty"`
	PriceRange    *PriceRange    `json:"price_range,omitempty"`
	DepartureTime *TimeRange     `json:"departure_time,omitempty"`
	ArrivalTime   *TimeRange     `json:"arrival_time,omitempty"`
	DurationRange *DurationRange `json:"duration_range,omitempty"`
}

func (f FilterState) IsZero() bool {
	return len(f.Airlines) == 0 && f.MaxStops == nil && f.PriceRange == nil &&
		f.DepartureTime == nil && f.ArrivalTime == nil && f.DurationRange == nil
}

// Filter field names accepted by FilterPatch.Clear.
const (
	FilterFieldAirlines      = "airlines"
	FilterFieldMaxStops      = "max_stops"
	FilterFieldPriceRange    = "price_range"
	FilterFieldDepartureTime = "departure_time"
	FilterFieldArrivalTime   = "arrival_time"
	FilterFieldDurationRange = "duration_range"
)

// FilterPatch is a partial update: nil fields keep their current value,
// names listed in Clear are reset before the set fields are applied.
type FilterPatch struct {
	Airlines      *[]string      `json:"airlines,omitempty"`
	MaxStops      *uint32        `json:"max_stops,omitempty"`
	PriceRange    *PriceRange    `json:"price_range,omitempty"`
	DepartureTime *TimeRange     `json:"departure_time,omitempty"`
	ArrivalTime   *TimeRange     `json:"arrival_time,omitempty"`
	DurationRange *DurationRange `json:"duration_range,omitempty"`
	Clear         []string       `json:"clear,omitempty"`
}

func (p FilterPatch) Apply(f FilterState) FilterState {
	out := f
	for _, field := range p.Clear {
		switch field {
		case FilterFieldAirlines:
			out.Airlines = nil
		case FilterFieldMaxStops:
			out.MaxStops = nil
		case FilterFieldPriceRange:
			out.PriceRange = nil
		case FilterFieldDepartureTime:
			out.DepartureTime = nil
		case FilterFieldArrivalTime:
			out.ArrivalTime = nil
		case FilterFieldDurationRange:
			out.DurationRange = nil
		}
	}

	if p.Airlines != nil {
		out.Airlines = append([]string(nil), (*p.Airlines)...)
	}
	if p.MaxStops != nil {
		v := *p.MaxStops
		out.MaxStops = &v
	}
	if p.PriceRange != nil {
		out.PriceRange = &PriceRange{Min: copyPtr(p.PriceRange.Min), Max: copyPtr(p.PriceRange.Max)}
	}
	if p.DepartureTime != nil {
		v := *p.DepartureTime
		out.DepartureTime = &v
	}
	if p.ArrivalTime != nil {
		v := *p.ArrivalTime
		out.ArrivalTime = &v
	}
	if p.DurationRange != nil {
		out.DurationRange = &DurationRange{Min: copyPtr(p.DurationRange.Min), Max: copyPtr(p.DurationRange.Max)}
	}
	return out
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

type SortKey string

const (
	SortPriceAsc    SortKey = "price_asc"
	SortDurationAsc SortKey = "duration_asc"
	SortRecommended SortKey = "recommended"

	DefaultSortKey = SortPriceAsc
)

func (k SortKey) Valid() bool {
	switch k {
	case SortPriceAsc, SortDurationAsc, SortRecommended:
		return true
	}
	return false
}

type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseSearching Phase = "searching"
	PhaseSuccess   Phase = "success"
	PhaseError     Phase = "error"
)

// SessionState is a read-only copy of one client's search session.
type SessionState struct {
	Phase          Phase           `json:"phase"`
	ActiveRequest  *SearchRequest  `json:"active_request,omitempty"`
	Results        *SearchResult   `json:"results,omitempty"`
	Filters        FilterState     `json:"filters"`
	SortKey        SortKey         `json:"sort_key"`
	Error          *AppError       `json:"error,omitempty"`
	LastSearchedAt *time.Time      `json:"last_searched_at,omitempty"`
	RecentSearches []SearchRequest `json:"recent_searches"`
}

// Preferences is the per-client state that outlives the process.
type Preferences struct {
	RecentSearches []SearchRequest `json:"recent_searches"`
	Filters        FilterState     `json:"filters"`
	SortKey        SortKey         `json:"sort_key"`
}
