package flight

import "sort"

// stopPenalty is added per connection when ranking by recommended.
const stopPenalty = 50.0

// Sort returns a sorted copy of flights. Sorting is stable so equal flights keep
// their relative order; an unknown key returns the input order.
func Sort(flights []Flight, key SortKey) []Flight {
	sorted := make([]Flight, len(flights))
	copy(sorted, flights)

	if len(sorted) <= 1 {
		return sorted
	}

	switch key {
	case SortPriceAsc:
		sortByPrice(sorted)
	case SortDurationAsc:
		sortByDuration(sorted)
	case SortRecommended:
		sortByRecommended(sorted)
	}
	return sorted
}

func sortByPrice(flights []Flight) {
	sort.SliceStable(flights, func(i, j int) bool {
		return flights[i].TotalPrice.Amount < flights[j].TotalPrice.Amount
	})
}

func sortByDuration(flights []Flight) {
	sort.SliceStable(flights, func(i, j int) bool {
		return flights[i].TotalDurationMinutes() < flights[j].TotalDurationMinutes()
	})
}

func sortByRecommended(flights []Flight) {
	sort.SliceStable(flights, func(i, j int) bool {
		return RecommendedScore(flights[i]) < RecommendedScore(flights[j])
	})
}

// RecommendedScore is price plus a fixed penalty per stop; lower is better.
func RecommendedScore(f Flight) float64 {
	return f.TotalPrice.Amount + stopPenalty*float64(f.TotalStops())
}
