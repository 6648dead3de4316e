package main

type Place struct {
	Type            string  `json:"type"`
	IATACode        string  `json:"iata_code"`
	Name            string  `json:"name"`
	CityName        string  `json:"city_name,omitempty"`
	IATACountryCode string  `json:"iata_country_code"`
	TimeZone        string  `json:"time_zone,omitempty"`
	Airports        []Place `json:"airports,omitempty"`
}

type Carrier struct {
	IATACode      string `json:"iata_code"`
	Name          string `json:"name"`
	LogoSymbolURL string `json:"logo_symbol_url"`
}

var airports = []Place{
	{Type: "airport", IATACode: "MAD", Name: "Adolfo Suárez Madrid-Barajas Airport", CityName: "Madrid", IATACountryCode: "ES", TimeZone: "Europe/Madrid"},
	{Type: "airport", IATACode: "BCN", Name: "Josep Tarradellas Barcelona-El Prat Airport", CityName: "Barcelona", IATACountryCode: "ES", TimeZone: "Europe/Madrid"},
	{Type: "airport", IATACode: "LHR", Name: "Heathrow Airport", CityName: "London", IATACountryCode: "GB", TimeZone: "Europe/London"},
	{Type: "airport", IATACode: "LGW", Name: "Gatwick Airport", CityName: "London", IATACountryCode: "GB", TimeZone: "Europe/London"},
	{Type: "airport", IATACode: "CDG", Name: "Paris Charles de Gaulle Airport", CityName: "Paris", IATACountryCode: "FR", TimeZone: "Europe/Paris"},
	{Type: "airport", IATACode: "AMS", Name: "Amsterdam Airport Schiphol", CityName: "Amsterdam", IATACountryCode: "NL", TimeZone: "Europe/Amsterdam"},
	{Type: "airport", IATACode: "FRA", Name: "Frankfurt Airport", CityName: "Frankfurt", IATACountryCode: "DE", TimeZone: "Europe/Berlin"},
	{Type: "airport", IATACode: "JFK", Name: "John F. Kennedy International Airport", CityName: "New York", IATACountryCode: "US", TimeZone: "America/New_York"},
	{Type: "airport", IATACode: "EWR", Name: "Newark Liberty International Airport", CityName: "New York", IATACountryCode: "US", TimeZone: "America/New_York"},
	{Type: "airport", IATACode: "SFO", Name: "San Francisco International Airport", CityName: "San Francisco", IATACountryCode: "US", TimeZone: "America/Los_Angeles"},
	{Type: "airport", IATACode: "CGK", Name: "Soekarno-Hatta International Airport", CityName: "Jakarta", IATACountryCode: "ID", TimeZone: "Asia/Jakarta"},
	{Type: "airport", IATACode: "DPS", Name: "I Gusti Ngurah Rai International Airport", CityName: "Denpasar", IATACountryCode: "ID", TimeZone: "Asia/Makassar"},
}

var carriers = []Carrier{
	{IATACode: "IB", Name: "Iberia", LogoSymbolURL: "https://assets.example.com/airlines/IB.svg"},
	{IATACode: "BA", Name: "British Airways", LogoSymbolURL: "https://assets.example.com/airlines/BA.svg"},
	{IATACode: "AF", Name: "Air France", LogoSymbolURL: "https://assets.example.com/airlines/AF.svg"},
	{IATACode: "KL", Name: "KLM", LogoSymbolURL: "https://assets.example.com/airlines/KL.svg"},
	{IATACode: "LH", Name: "Lufthansa", LogoSymbolURL: "https://assets.example.com/airlines/LH.svg"},
	{IATACode: "GA", Name: "Garuda Indonesia", LogoSymbolURL: "https://assets.example.com/airlines/GA.svg"},
}

// hubs used for one-stop itineraries, keyed by carrier
var hubs = map[string]string{
	"IB": "MAD",
	"BA": "LHR",
	"AF": "CDG",
	"KL": "AMS",
	"LH": "FRA",
	"GA": "CGK",
}

func findAirport(code string) (Place, bool) {
	for _, a := range airports {
		if a.IATACode == code {
			return a, true
		}
	}
	return Place{}, false
}
