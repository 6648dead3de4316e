package main

import (
	"net/http"
	"strings"
)

func AirportsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"data": airports})
}

func AirlinesHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"data": carriers})
}

// SuggestionsHandler answers with matching airports and, for city matches, the city
// with its airports nested.
func SuggestionsHandler(w http.ResponseWriter, r *http.Request) {
	query := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("query")))
	if query == "" {
		writeError(w, http.StatusBadRequest, "invalid_parameters", "query is required")
		return
	}

	cities := make(map[string]*Place)
	var order []string
	results := make([]Place, 0)

	for _, a := range airports {
		if strings.Contains(strings.ToLower(a.CityName), query) {
			city, ok := cities[a.CityName]
			if !ok {
				city = &Place{Type: "city", Name: a.CityName, IATACountryCode: a.IATACountryCode}
				cities[a.CityName] = city
				order = append(order, a.CityName)
			}
			city.Airports = append(city.Airports, a)
			continue
		}
		if strings.Contains(strings.ToLower(a.Name), query) || strings.ToLower(a.IATACode) == query {
			results = append(results, a)
		}
	}
	for _, name := range order {
		results = append(results, *cities[name])
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": results})
}
