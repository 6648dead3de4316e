package flight

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(flights []Flight) []string {
	out := make([]string, 0, len(flights))
	for _, f := range flights {
		out = append(out, f.ID)
	}
	return out
}

func filterFixture() []Flight {
	return []Flight{
		testFlight("ib_direct", 300, 480, 0, "IB", departAt(6, 30)),
		testFlight("ba_1stop", 250, 600, 1, "BA", departAt(14, 0)),
		testFlight("ux_2stop", 180, 900, 2, "UX", departAt(23, 15)),
		testFlight("ib_late", 520, 470, 0, "IB", departAt(21, 0)),
	}
}

func TestFilter_ZeroStateKeepsEverything(t *testing.T) {
	flights := filterFixture()

	got := Filter(flights, FilterState{})
	assert.Equal(t, ids(flights), ids(got))
}

func TestFilter_Predicates(t *testing.T) {
	zero := uint32(0)
	one := uint32(1)

	tests := []struct {
		name   string
		filter FilterState
		want   []string
	}{
		{name: "airline by code", filter: FilterState{Airlines: []string{"ib"}}, want: []string{"ib_direct", "ib_late"}},
		{name: "airline by name", filter: FilterState{Airlines: []string{"BA Airways"}}, want: []string{"ba_1stop"}},
		{name: "unknown airline", filter: FilterState{Airlines: []string{"ZZ"}}, want: []string{}},
		{name: "nonstop only", filter: FilterState{MaxStops: &zero}, want: []string{"ib_direct", "ib_late"}},
		{name: "at most one stop", filter: FilterState{MaxStops: &one}, want: []string{"ib_direct", "ba_1stop", "ib_late"}},
		{name: "price inclusive bounds", filter: FilterState{PriceRange: &PriceRange{Min: f64(250), Max: f64(300)}}, want: []string{"ib_direct", "ba_1stop"}},
		{name: "price floor only", filter: FilterState{PriceRange: &PriceRange{Min: f64(300)}}, want: []string{"ib_direct", "ib_late"}},
		{name: "price ceiling only", filter: FilterState{PriceRange: &PriceRange{Max: f64(250)}}, want: []string{"ba_1stop", "ux_2stop"}},
		{name: "price band without bounds", filter: FilterState{PriceRange: &PriceRange{}}, want: []string{"ib_direct", "ba_1stop", "ux_2stop", "ib_late"}},
		{name: "duration floor only", filter: FilterState{DurationRange: &DurationRange{Min: u32(600)}}, want: []string{"ba_1stop", "ux_2stop"}},
		{name: "duration ceiling only", filter: FilterState{DurationRange: &DurationRange{Max: u32(480)}}, want: []string{"ib_direct", "ib_late"}},
		{name: "duration", filter: FilterState{DurationRange: &DurationRange{Min: u32(470), Max: u32(600)}}, want: []string{"ib_direct", "ba_1stop", "ib_late"}},
		{name: "morning departures", filter: FilterState{DepartureTime: &TimeRange{From: "06:00", To: "12:00"}}, want: []string{"ib_direct"}},
		{name: "night band wraps midnight", filter: FilterState{DepartureTime: &TimeRange{From: "21:00", To: "07:00"}}, want: []string{"ib_direct", "ux_2stop", "ib_late"}},
		{name: "invalid bounds fall back to whole day", filter: FilterState{DepartureTime: &TimeRange{From: "late", To: "25:99"}}, want: []string{"ib_direct", "ba_1stop", "ux_2stop", "ib_late"}},
		{name: "arrival window", filter: FilterState{ArrivalTime: &TimeRange{From: "14:00", To: "15:00"}}, want: []string{"ib_direct", "ux_2stop"}},
		{
			name: "combined constraints",
			filter: FilterState{
				Airlines:   []string{"IB", "BA"},
				MaxStops:   &zero,
				PriceRange: &PriceRange{Max: f64(400)},
			},
			want: []string{"ib_direct"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(filterFixture(), tt.filter)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestFilter_OneSidedBandFromJSON(t *testing.T) {
	var patch FilterPatch
	require.NoError(t, json.Unmarshal([]byte(`{"price_range":{"min":250},"duration_range":{"min":480}}`), &patch))

	got := Filter(filterFixture(), patch.Apply(FilterState{}))
	assert.Equal(t, []string{"ib_direct", "ba_1stop"}, ids(got))
}

func TestFilter_UsesAirportLocalTime(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tz database unavailable")
	}
	// 08:00 in New York is 12:00 UTC
	f := testFlight("jfk_morning", 200, 420, 0, "AA", time.Date(2026, 10, 29, 8, 0, 0, 0, ny))

	got := Filter([]Flight{f}, FilterState{DepartureTime: &TimeRange{From: "07:00", To: "09:00"}})
	assert.Len(t, got, 1)
}

func TestFilter_TimeFilterDropsFlightsWithoutSegments(t *testing.T) {
	f := Flight{ID: "empty", TotalPrice: Price{Amount: 10}}

	got := Filter([]Flight{f}, FilterState{DepartureTime: &TimeRange{From: "00:00", To: "23:59"}})
	assert.Empty(t, got)
}

func TestFilter_IsIdempotentAndPure(t *testing.T) {
	flights := filterFixture()
	before := ids(flights)
	state := FilterState{PriceRange: &PriceRange{Min: f64(200), Max: f64(600)}}

	once := Filter(flights, state)
	twice := Filter(once, state)

	assert.Equal(t, ids(once), ids(twice))
	assert.Equal(t, before, ids(flights))
}

func TestFilterPatch_Apply(t *testing.T) {
	one := uint32(1)
	floor := f64(100)
	start := FilterState{
		Airlines: []string{"IB"},
		MaxStops: &one,
	}

	airlines := []string{"BA", "UX"}
	got := FilterPatch{
		Airlines:   &airlines,
		PriceRange: &PriceRange{Min: floor, Max: f64(200)},
		Clear:      []string{FilterFieldMaxStops},
	}.Apply(start)

	assert.Equal(t, []string{"BA", "UX"}, got.Airlines)
	assert.Nil(t, got.MaxStops)
	assert.Equal(t, &PriceRange{Min: f64(100), Max: f64(200)}, got.PriceRange)
	assert.Equal(t, []string{"IB"}, start.Airlines)
	assert.Equal(t, &one, start.MaxStops)

	airlines[0] = "ZZ"
	*floor = 1
	assert.Equal(t, "BA", got.Airlines[0])
	assert.Equal(t, 100.0, *got.PriceRange.Min)
}
