package flight

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sortFixture() []Flight {
	return []Flight{
		testFlight("a", 300, 480, 0, "IB", departAt(8, 0)),
		testFlight("b", 260, 620, 1, "BA", departAt(9, 0)),
		testFlight("c", 200, 900, 2, "UX", departAt(10, 0)),
		testFlight("d", 300, 470, 0, "IB", departAt(11, 0)),
	}
}

func TestSort(t *testing.T) {
	tests := []struct {
		key  SortKey
		want []string
	}{
		{key: SortPriceAsc, want: []string{"c", "b", "a", "d"}},
		{key: SortDurationAsc, want: []string{"d", "a", "b", "c"}},
		// scores: a=300, b=310, c=300, d=300
		{key: SortRecommended, want: []string{"a", "c", "d", "b"}},
		{key: SortKey("cheapest_first"), want: []string{"a", "b", "c", "d"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			flights := sortFixture()
			got := Sort(flights, tt.key)

			assert.Equal(t, tt.want, ids(got))
			assert.Equal(t, []string{"a", "b", "c", "d"}, ids(flights), "input must not be reordered")
		})
	}
}

func TestSort_IsIdempotent(t *testing.T) {
	for _, key := range []SortKey{SortPriceAsc, SortDurationAsc, SortRecommended} {
		once := Sort(sortFixture(), key)
		assert.Equal(t, ids(once), ids(Sort(once, key)), string(key))
	}
}

func TestSort_EmptyAndSingle(t *testing.T) {
	assert.Empty(t, Sort(nil, SortPriceAsc))

	single := []Flight{testFlight("only", 1, 60, 0, "IB", departAt(8, 0))}
	assert.Equal(t, []string{"only"}, ids(Sort(single, SortRecommended)))
}

func TestRecommendedScore_CountsStopsAcrossSlices(t *testing.T) {
	out := testFlight("rt", 400, 300, 1, "IB", departAt(8, 0))
	back := testFlight("rt_back", 0, 300, 2, "IB", departAt(18, 0))
	out.Slices = append(out.Slices, back.Slices[0])

	assert.Equal(t, 2, out.Stops())
	assert.Equal(t, 3, out.TotalStops())
	assert.Equal(t, 550.0, RecommendedScore(out))
	assert.Equal(t, uint32(600), out.TotalDurationMinutes())
}
