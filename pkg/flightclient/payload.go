package flightclient

// Provider wire types. Every field is optional on the way in: the mapper decides
// what a missing value degrades to.

type dataEnvelope[T any] struct {
	Data T `json:"data"`
}

type errorEnvelope struct {
	Errors []ProviderErrorPayload `json:"errors"`
}

type ProviderErrorPayload struct {
	Code    string `json:"code"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

type OfferRequestPayload struct {
	Slices       []SliceRequestPayload           `json:"slices"`
	Passengers   []PassengerPayload              `json:"passengers"`
	CabinClass   string                          `json:"cabin_class,omitempty"`
	PrivateFares map[string][]PrivateFarePayload `json:"private_fares,omitempty"`
}

type SliceRequestPayload struct {
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureDate string `json:"departure_date"`
}

type PassengerPayload struct {
	Type                     string                  `json:"type"`
	LoyaltyProgrammeAccounts []LoyaltyAccountPayload `json:"loyalty_programme_accounts,omitempty"`
}

type LoyaltyAccountPayload struct {
	AirlineIATACode string `json:"airline_iata_code"`
	AccountNumber   string `json:"account_number"`
}

type PrivateFarePayload struct {
	CorporateCode string `json:"corporate_code"`
}

type OfferRequestResponse struct {
	ID     string         `json:"id"`
	Offers []OfferPayload `json:"offers"`
}

type OfferPayload struct {
	ID            string          `json:"id"`
	TotalAmount   string          `json:"total_amount"`
	TotalCurrency string          `json:"total_currency"`
	ExpiresAt     string          `json:"expires_at"`
	Owner         *CarrierPayload `json:"owner"`
	Slices        []SlicePayload  `json:"slices"`
}

type SlicePayload struct {
	Origin      *PlacePayload    `json:"origin"`
	Destination *PlacePayload    `json:"destination"`
	Duration    string           `json:"duration"`
	Segments    []SegmentPayload `json:"segments"`
}

type SegmentPayload struct {
	Origin                       *PlacePayload    `json:"origin"`
	Destination                  *PlacePayload    `json:"destination"`
	DepartingAt                  string           `json:"departing_at"`
	ArrivingAt                   string           `json:"arriving_at"`
	Duration                     string           `json:"duration"`
	MarketingCarrier             *CarrierPayload  `json:"marketing_carrier"`
	OperatingCarrier             *CarrierPayload  `json:"operating_carrier"`
	MarketingCarrierFlightNumber string           `json:"marketing_carrier_flight_number"`
	OperatingCarrierFlightNumber string           `json:"operating_carrier_flight_number"`
	Aircraft                     *AircraftPayload `json:"aircraft"`
}

type PlacePayload struct {
	Type            string `json:"type"`
	IATACode        string `json:"iata_code"`
	Name            string `json:"name"`
	CityName        string `json:"city_name"`
	IATACountryCode string `json:"iata_country_code"`
	TimeZone        string `json:"time_zone"`
	// Airports is set on city places returned by suggestions.
	Airports []PlacePayload `json:"airports,omitempty"`
}

type CarrierPayload struct {
	IATACode      string `json:"iata_code"`
	Name          string `json:"name"`
	LogoSymbolURL string `json:"logo_symbol_url"`
}

type AircraftPayload struct {
	Name string `json:"name"`
}
